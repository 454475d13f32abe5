package rendermodel

import (
	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/input"
	"github.com/Faultbox/xrkit/pkg/openxr/framework"
)

// DrawController is the event key the stepper listens on. Value "true"
// enables the controller visuals; any other value disables them.
const DrawController = "draw_controller"

// Stepper hosts the controller model cache inside the main loop and drives
// the per-frame animation time from controller input.
type Stepper struct {
	framework.Base

	// LeftControllerModelPath and RightControllerModelPath select the
	// runtime models to load on enable.
	LeftControllerModelPath  string
	RightControllerModelPath string
	// WithAnimation starts the model's first animation on enable.
	WithAnimation bool

	renderModel *RenderModel
	drawing     bool
	frame       uint64

	shutdownCompleted bool
}

// NewStepper returns a stepper with the default controller model paths.
func NewStepper() *Stepper {
	return &Stepper{
		LeftControllerModelPath:  "/model_fb/controller/left",
		RightControllerModelPath: "/model_fb/controller/right",
		WithAnimation:            true,
	}
}

// Initialize constructs the extension bundle. Failure aborts the add: the
// stepper never runs on a backend without the extension.
func (s *Stepper) Initialize(id framework.StepperID, ctx *framework.Context) bool {
	if !s.Base.Initialize(id, ctx) {
		return false
	}
	rm, err := New(ctx.Backend, ctx.Input)
	if err != nil {
		logger.Warn("render model extension not available", zap.String("id", id), zap.Error(err))
		return false
	}
	s.renderModel = rm
	return true
}

// Step handles this frame's events and then draws.
func (s *Stepper) Step(token *framework.MainThreadToken) {
	for _, ev := range token.Events() {
		s.checkEvent(ev)
	}
	s.draw()
}

// checkEvent toggles the controller visuals on the DrawController key,
// guarding against double enable and double disable.
func (s *Stepper) checkEvent(ev framework.Event) {
	if ev.Key != DrawController {
		return
	}
	if ev.Value == "true" {
		if s.drawing {
			return
		}
		err := s.renderModel.SetupControllerModels(
			s.LeftControllerModelPath, s.RightControllerModelPath, s.WithAnimation)
		if err != nil {
			logger.Err("controller model setup failed", zap.Error(err))
			return
		}
		s.drawing = true
		return
	}
	if !s.drawing {
		return
	}
	s.renderModel.DisableControllerModels()
	s.drawing = false
}

// draw advances both hands' animation time. The frame counter increments
// once per frame, with the left-hand update, so both hands cycle in phase.
func (s *Stepper) draw() {
	if !s.drawing {
		return
	}
	menu := s.Ctx.Input.ControllerMenuButton()

	right := animTime(s.Ctx.Input.Controller(input.Right), menu, s.frame)
	s.applyAnimTime(input.Right, right)

	left := animTime(s.Ctx.Input.Controller(input.Left), menu, s.frame) + leftHandShift
	s.frame++
	s.applyAnimTime(input.Left, left)
}

func (s *Stepper) applyAnimTime(hand input.Handed, t float32) {
	m := s.Ctx.Input.ControllerModel(hand)
	if m == nil || m.Anims().Count() == 0 {
		return
	}
	m.Anims().AnimTime(t)
}

// Shutdown releases the visuals and the function-pointer bundle.
func (s *Stepper) Shutdown() {
	if s.renderModel != nil {
		s.renderModel.DisableControllerModels()
		s.renderModel = nil
	}
	s.drawing = false
	s.shutdownCompleted = true
}

// ShutdownDone reports whether Shutdown has run.
func (s *Stepper) ShutdownDone() bool { return s.shutdownCompleted }
