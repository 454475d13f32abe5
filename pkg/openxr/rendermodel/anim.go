package rendermodel

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/xrkit/pkg/input"
)

// Animation times baked into the controller model's single timeline. Each
// input maps to a fixed point (or a short analog ramp) on that timeline.
const (
	animStickUp        float32 = 1.18
	animStickDown      float32 = 1.26
	animStickRight     float32 = 1.38
	animStickLeft      float32 = 1.32
	animStickUpRight   float32 = 1.58
	animStickDownRight float32 = 1.64
	animStickUpLeft    float32 = 1.52
	animStickDownLeft  float32 = 1.46

	animTriggerBase float32 = 0.60
	animGripBase    float32 = 0.82
	animAnalogScale float32 = 0.06

	animX1   float32 = 0.18
	animX2   float32 = 0.32
	animBoth float32 = 0.46
	animMenu float32 = 0.98

	animIdle float32 = 4.40

	// leftHandShift desynchronizes the left hand from the right visually.
	leftHandShift float32 = 0.04
)

const (
	stickDeadzone   float32 = 0.25
	axisDominance   float32 = 0.3
	analogThreshold float32 = 0.1
)

// stickCode maps a thumbstick deflection past the deadzone to a direction
// time. Diagonals require both axes past the dominance threshold; when
// neither axis passes it the larger axis wins.
func stickCode(stick input.Vec2) float32 {
	xDom := math32.Abs(stick.X) > axisDominance
	yDom := math32.Abs(stick.Y) > axisDominance
	if !xDom && !yDom {
		if math32.Abs(stick.X) > math32.Abs(stick.Y) {
			xDom = true
		} else {
			yDom = true
		}
	}
	switch {
	case xDom && yDom:
		if stick.Y > 0 {
			if stick.X > 0 {
				return animStickUpRight
			}
			return animStickUpLeft
		}
		if stick.X > 0 {
			return animStickDownRight
		}
		return animStickDownLeft
	case xDom:
		if stick.X > 0 {
			return animStickRight
		}
		return animStickLeft
	default:
		if stick.Y > 0 {
			return animStickUp
		}
		return animStickDown
	}
}

// activeAnimCodes collects the animation times of every currently active
// input, in fixed priority order: stick, trigger, grip, face buttons, menu.
// Stick click alone contributes nothing.
func activeAnimCodes(c input.Controller, menu input.BtnState) []float32 {
	var codes []float32
	if math32.Hypot(c.Stick.X, c.Stick.Y) > stickDeadzone {
		codes = append(codes, stickCode(c.Stick))
	}
	if c.Trigger > analogThreshold {
		codes = append(codes, animTriggerBase+animAnalogScale*c.Trigger)
	}
	if c.Grip > analogThreshold {
		codes = append(codes, animGripBase+animAnalogScale*c.Grip)
	}
	switch {
	case c.IsX1Pressed() && c.IsX2Pressed():
		codes = append(codes, animBoth)
	case c.IsX1Pressed():
		codes = append(codes, animX1)
	case c.IsX2Pressed():
		codes = append(codes, animX2)
	}
	if menu.IsActive() {
		codes = append(codes, animMenu)
	}
	return codes
}

// animTime computes the animation time for one hand this frame. With several
// inputs active the frame counter cycles among their codes.
func animTime(c input.Controller, menu input.BtnState, frame uint64) float32 {
	codes := activeAnimCodes(c, menu)
	if len(codes) == 0 {
		return animIdle
	}
	return codes[frame%uint64(len(codes))]
}
