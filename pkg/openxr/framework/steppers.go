package framework

import (
	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/input"
	"github.com/Faultbox/xrkit/pkg/openxr"
)

// Keys of the events the host itself reports.
const (
	// EventRunning is emitted with value "true" when a stepper finishes
	// initializing and starts running.
	EventRunning = "stepper_running"
	// EventRemoved is emitted with value "true" when a stepper finishes
	// shutting down and is removed.
	EventRemoved = "stepper_removed"
)

type actionKind int

const (
	actionAdd actionKind = iota
	actionRemove
	actionEvent
	actionQuit
)

// Action is a queued host operation, consumed at the start of the next
// frame.
type Action struct {
	kind    actionKind
	stepper Stepper
	id      StepperID
	key     string
	value   string
	reason  string
}

// Add queues a stepper for hosting under the given id.
func Add(id StepperID, s Stepper) Action {
	return Action{kind: actionAdd, id: id, stepper: s}
}

// Remove queues the removal (and shutdown) of the stepper with the given id.
func Remove(id StepperID) Action {
	return Action{kind: actionRemove, id: id}
}

// NewEvent queues a (from, key, value) event for delivery to every running
// stepper next frame.
func NewEvent(from StepperID, key, value string) Action {
	return Action{kind: actionEvent, id: from, key: key, value: value}
}

// Quit asks the host loop to stop.
func Quit(from StepperID, reason string) Action {
	return Action{kind: actionQuit, id: from, reason: reason}
}

type stepperState int

const (
	stateInitializing stepperState = iota
	stateRunning
	stateClosing
)

type handler struct {
	id      StepperID
	stepper Stepper
	state   stepperState
}

// Steppers is the ordered stepper host. One instance per main loop; all
// methods are main-thread only.
type Steppers struct {
	ctx     *Context
	running []*handler
	actions []Action
}

// New creates a stepper host bound to the given backend and input surfaces.
func New(backend openxr.Backend, in input.System) *Steppers {
	s := &Steppers{ctx: &Context{Backend: backend, Input: in}}
	s.ctx.host = s
	return s
}

// Context returns the host context handed to steppers.
func (s *Steppers) Context() *Context { return s.ctx }

// SendEvent queues an action for the next frame.
func (s *Steppers) SendEvent(a Action) {
	s.actions = append(s.actions, a)
}

// Count returns the number of hosted steppers, initializing and closing
// ones included.
func (s *Steppers) Count() int { return len(s.running) }

// Step runs one frame: drain queued actions into the token, advance stepper
// lifecycles, then step every running, enabled stepper. Within the frame all
// initialization precedes all event handling, which precedes all drawing
// (steppers handle token events at the top of their own Step). Returns
// false when a quit action was dequeued.
func (s *Steppers) Step(token *MainThreadToken) bool {
	pending := s.actions
	s.actions = nil
	for _, a := range pending {
		switch a.kind {
		case actionAdd:
			if a.stepper.Initialize(a.id, s.ctx) {
				s.running = append(s.running, &handler{id: a.id, stepper: a.stepper, state: stateInitializing})
			} else {
				logger.Warn("stepper did not initialize", zap.String("id", a.id))
			}
		case actionRemove:
			for _, h := range s.running {
				if h.id == a.id && h.state != stateClosing {
					h.stepper.Shutdown()
					h.state = stateClosing
				}
			}
		case actionQuit:
			logger.Info("quit requested", zap.String("from", a.id), zap.String("reason", a.reason))
			return false
		case actionEvent:
			token.events = append(token.events, Event{From: a.id, Key: a.key, Value: a.value})
		}
	}

	// Advance steppers that are not running yet, or are on their way out.
	kept := s.running[:0]
	for _, h := range s.running {
		switch h.state {
		case stateInitializing:
			if h.stepper.InitializeDone() {
				logger.Info("stepper initialized", zap.String("id", h.id))
				h.state = stateRunning
				token.events = append(token.events, Event{From: h.id, Key: EventRunning, Value: "true"})
			}
		case stateClosing:
			if h.stepper.ShutdownDone() {
				logger.Info("stepper removed", zap.String("id", h.id))
				token.events = append(token.events, Event{From: h.id, Key: EventRemoved, Value: "true"})
				continue
			}
		}
		kept = append(kept, h)
	}
	s.running = kept

	for _, h := range s.running {
		if h.state == stateRunning && h.stepper.Enabled() {
			h.stepper.Step(token)
		}
	}
	return true
}

// Shutdown triggers shutdown on every hosted stepper and polls until all
// report done, in reverse insertion order. Pending actions are dropped.
func (s *Steppers) Shutdown() {
	s.actions = nil
	for i := len(s.running) - 1; i >= 0; i-- {
		h := s.running[i]
		if h.state != stateClosing {
			logger.Diag("closing stepper", zap.String("id", h.id))
			h.stepper.Shutdown()
			h.state = stateClosing
		}
	}

	// Bounded wait for multi-frame shutdowns.
	for iter := 0; iter < 50 && len(s.running) > 0; iter++ {
		kept := s.running[:0]
		for _, h := range s.running {
			if h.stepper.ShutdownDone() {
				logger.Info("stepper removed", zap.String("id", h.id))
				continue
			}
			kept = append(kept, h)
		}
		s.running = kept
	}
	if len(s.running) > 0 {
		logger.Warn("steppers still closing at shutdown", zap.Int("count", len(s.running)))
		s.running = nil
	}
}
