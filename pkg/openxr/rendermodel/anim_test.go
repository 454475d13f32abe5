package rendermodel

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/xrkit/pkg/input"
)

func almost(a, b float32) bool { return math32.Abs(a-b) < 1e-5 }

func TestAnimTimeSingleInputs(t *testing.T) {
	tests := []struct {
		name string
		c    input.Controller
		menu input.BtnState
		want float32
	}{
		{"idle", input.Controller{}, 0, 4.40},
		{"stick up", input.Controller{Stick: input.Vec2{Y: 1}}, 0, 1.18},
		{"stick down", input.Controller{Stick: input.Vec2{Y: -1}}, 0, 1.26},
		{"stick right", input.Controller{Stick: input.Vec2{X: 1}}, 0, 1.38},
		{"stick left", input.Controller{Stick: input.Vec2{X: -1}}, 0, 1.32},
		{"stick up-right", input.Controller{Stick: input.Vec2{X: 0.7, Y: 0.7}}, 0, 1.58},
		{"stick down-right", input.Controller{Stick: input.Vec2{X: 0.7, Y: -0.7}}, 0, 1.64},
		{"stick up-left", input.Controller{Stick: input.Vec2{X: -0.7, Y: 0.7}}, 0, 1.52},
		{"stick down-left", input.Controller{Stick: input.Vec2{X: -0.7, Y: -0.7}}, 0, 1.46},
		{"trigger full", input.Controller{Trigger: 1}, 0, 0.66},
		{"trigger half", input.Controller{Trigger: 0.5}, 0, 0.63},
		{"grip full", input.Controller{Grip: 1}, 0, 0.88},
		{"x1 only", input.Controller{X1: input.BtnActive}, 0, 0.18},
		{"x2 only", input.Controller{X2: input.BtnActive}, 0, 0.32},
		{"both face buttons", input.Controller{X1: input.BtnActive, X2: input.BtnActive}, 0, 0.46},
		{"menu", input.Controller{}, input.BtnActive, 0.98},
		{"stick click alone", input.Controller{StickClick: input.BtnActive}, 0, 4.40},
	}

	for _, tt := range tests {
		if got := animTime(tt.c, tt.menu, 0); !almost(got, tt.want) {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, got)
		}
	}
}

func TestAnimTimeBoundaries(t *testing.T) {
	// Exactly at the thresholds counts as no input.
	tests := []struct {
		name string
		c    input.Controller
	}{
		{"stick at deadzone", input.Controller{Stick: input.Vec2{X: 0.25}}},
		{"trigger at threshold", input.Controller{Trigger: 0.1}},
		{"grip at threshold", input.Controller{Grip: 0.1}},
	}
	for _, tt := range tests {
		if got := animTime(tt.c, 0, 0); !almost(got, 4.40) {
			t.Errorf("%s: expected idle 4.40, got %f", tt.name, got)
		}
	}

	// Just past the deadzone with neither axis dominant: the larger axis
	// decides the direction.
	c := input.Controller{Stick: input.Vec2{X: 0.26, Y: 0.1}}
	if got := animTime(c, 0, 0); !almost(got, 1.38) {
		t.Errorf("shallow right deflection: expected 1.38, got %f", got)
	}
}

func TestAnimTimeCyclesActiveCodes(t *testing.T) {
	// Trigger at 1.0 plus both face buttons: codes [0.66, 0.46].
	c := input.Controller{
		Trigger: 1,
		X1:      input.BtnActive,
		X2:      input.BtnActive,
	}
	want := []float32{0.66, 0.46, 0.66, 0.46}
	for frame, w := range want {
		if got := animTime(c, 0, uint64(frame)); !almost(got, w) {
			t.Errorf("frame %d: expected %f, got %f", frame, w, got)
		}
	}
}

func TestAnimTimeCodeOrder(t *testing.T) {
	// Stick, trigger, grip, face, menu is the fixed priority order.
	c := input.Controller{
		Stick:   input.Vec2{Y: 1},
		Trigger: 1,
		Grip:    1,
		X1:      input.BtnActive,
	}
	codes := activeAnimCodes(c, input.BtnActive)
	want := []float32{1.18, 0.66, 0.88, 0.18, 0.98}
	if len(codes) != len(want) {
		t.Fatalf("expected %d codes, got %d", len(want), len(codes))
	}
	for i := range want {
		if !almost(codes[i], want[i]) {
			t.Errorf("code %d: expected %f, got %f", i, want[i], codes[i])
		}
	}
}

func TestLeftHandShift(t *testing.T) {
	if !almost(leftHandShift, 0.04) {
		t.Errorf("expected left-hand shift 0.04, got %f", leftHandShift)
	}
	// Idle: right 4.40, left 4.44.
	idle := animTime(input.Controller{}, 0, 0)
	if !almost(idle+leftHandShift, 4.44) {
		t.Errorf("expected shifted idle 4.44, got %f", idle+leftHandShift)
	}
}
