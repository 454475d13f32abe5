// Package input models the per-frame controller state the XR runtime
// reports, and the registry of active controller visuals. Implementations
// of System are main-thread only.
package input

import "github.com/Faultbox/xrkit/pkg/model"

// Handed selects one of the two controllers.
type Handed int

const (
	Left Handed = iota
	Right
)

// String returns "left" or "right".
func (h Handed) String() string {
	if h == Left {
		return "left"
	}
	return "right"
}

// BtnState describes a button's state for the current frame.
type BtnState uint32

const (
	BtnInactive     BtnState = 0
	BtnActive       BtnState = 1 << 0
	BtnJustActive   BtnState = 1 << 1
	BtnJustInactive BtnState = 1 << 2
)

// IsActive reports whether the button is currently held.
func (s BtnState) IsActive() bool { return s&BtnActive != 0 }

// IsJustActive reports whether the button went down this frame.
func (s BtnState) IsJustActive() bool { return s&BtnJustActive != 0 }

// IsJustInactive reports whether the button went up this frame.
func (s BtnState) IsJustInactive() bool { return s&BtnJustInactive != 0 }

// Transition derives this frame's state from the previous one and whether
// the button is down now.
func Transition(prev BtnState, down bool) BtnState {
	switch {
	case down && !prev.IsActive():
		return BtnActive | BtnJustActive
	case down:
		return BtnActive
	case prev.IsActive():
		return BtnJustInactive
	default:
		return BtnInactive
	}
}

// Vec2 is the thumbstick deflection, +Y up, each axis in [-1, 1].
type Vec2 struct {
	X, Y float32
}

// Controller is the snapshot of one controller for the current frame.
type Controller struct {
	Stick      Vec2
	Trigger    float32
	Grip       float32
	Tracked    BtnState
	StickClick BtnState
	X1         BtnState
	X2         BtnState
}

// IsX1Pressed reports whether the first face button is held.
func (c Controller) IsX1Pressed() bool { return c.X1.IsActive() }

// IsX2Pressed reports whether the second face button is held.
func (c Controller) IsX2Pressed() bool { return c.X2.IsActive() }

// IsStickClicked reports whether the stick is pressed in.
func (c Controller) IsStickClicked() bool { return c.StickClick.IsActive() }

// IsTracked reports whether the controller pose is currently tracked.
func (c Controller) IsTracked() bool { return c.Tracked.IsActive() }

// System is the input surface the extension subsystems consume. The
// controller-model setters hold the active visual per hand; the references
// are cleared before the owning cache drops its models.
type System interface {
	Controller(hand Handed) Controller
	ControllerMenuButton() BtnState
	SetControllerModel(hand Handed, m *model.Model)
	ControllerModel(hand Handed) *model.Model
}

// State is a plain mutable System implementation for hosts that poll a
// device themselves (and for tests).
type State struct {
	Controllers [2]Controller
	MenuButton  BtnState

	models [2]*model.Model
}

// Controller returns the snapshot for the given hand.
func (s *State) Controller(hand Handed) Controller { return s.Controllers[hand] }

// ControllerMenuButton returns the system/menu button state.
func (s *State) ControllerMenuButton() BtnState { return s.MenuButton }

// SetControllerModel sets or clears (m == nil) the active visual for a hand.
func (s *State) SetControllerModel(hand Handed, m *model.Model) { s.models[hand] = m }

// ControllerModel returns the active visual for a hand, or nil.
func (s *State) ControllerModel(hand Handed) *model.Model { return s.models[hand] }
