package sim

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/input"
)

func init() {
	// GL and SDL calls must stay on the main thread.
	runtime.LockOSThread()
}

// WindowConfig holds the desktop window settings.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	VSync  bool
}

// Window is the desktop stand-in for the headset display: an SDL2 window
// with a GL context current on the main thread.
type Window struct {
	sdlWindow *sdl.Window
	glContext sdl.GLContext
}

// NewWindow creates the window and GL context and initializes the SDL
// subsystems the simulator needs.
func NewWindow(cfg WindowConfig) (*Window, error) {
	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_GAMECONTROLLER); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	w := &Window{}
	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if cfg.VSync {
		if err := sdl.GLSetSwapInterval(1); err != nil {
			logger.Warn("failed to enable VSync", zap.Error(err))
		}
	} else {
		sdl.GLSetSwapInterval(0)
	}

	logger.Info("window created", zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
	return w, nil
}

// SwapBuffers presents the frame.
func (w *Window) SwapBuffers() { w.sdlWindow.GLSwap() }

// Close destroys the window and shuts SDL down.
func (w *Window) Close() {
	logger.Info("closing window")
	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}

// Poller turns one SDL game controller into the two-handed controller
// snapshot: left half of the pad drives the Left hand, right half the Right
// hand, start button is the menu button.
type Poller struct {
	pad   *sdl.GameController
	state *input.State
}

// NewPoller opens the first attached game controller, if any. Without a pad
// the snapshot stays at rest and only window events are processed.
func NewPoller(state *input.State) *Poller {
	p := &Poller{state: state}
	for i := 0; i < sdl.NumJoysticks(); i++ {
		if sdl.IsGameController(i) {
			p.pad = sdl.GameControllerOpen(i)
			if p.pad != nil {
				logger.Info("game controller opened", zap.String("name", p.pad.Name()))
				break
			}
		}
	}
	return p
}

// Close releases the controller.
func (p *Poller) Close() {
	if p.pad != nil {
		p.pad.Close()
		p.pad = nil
	}
}

// axis normalizes an SDL axis to [-1, 1].
func axis(v int16) float32 {
	if v >= 0 {
		return float32(v) / 32767
	}
	return float32(v) / 32768
}

// trigger normalizes an SDL trigger axis to [0, 1].
func trigger(v int16) float32 {
	if v <= 0 {
		return 0
	}
	return float32(v) / 32767
}

// Update drains SDL events and refreshes the controller snapshot. Returns
// false when the window was closed.
func (p *Poller) Update() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if _, ok := event.(*sdl.QuitEvent); ok {
			return false
		}
	}
	if p.pad == nil {
		return true
	}

	down := func(b sdl.GameControllerButton) bool { return p.pad.Button(b) == sdl.PRESSED }

	left := &p.state.Controllers[input.Left]
	left.Stick = input.Vec2{
		X: axis(p.pad.Axis(sdl.CONTROLLER_AXIS_LEFTX)),
		Y: -axis(p.pad.Axis(sdl.CONTROLLER_AXIS_LEFTY)),
	}
	left.Trigger = trigger(p.pad.Axis(sdl.CONTROLLER_AXIS_TRIGGERLEFT))
	left.Grip = boolAnalog(down(sdl.CONTROLLER_BUTTON_LEFTSHOULDER))
	left.Tracked = input.Transition(left.Tracked, true)
	left.StickClick = input.Transition(left.StickClick, down(sdl.CONTROLLER_BUTTON_LEFTSTICK))
	left.X1 = input.Transition(left.X1, down(sdl.CONTROLLER_BUTTON_X))
	left.X2 = input.Transition(left.X2, down(sdl.CONTROLLER_BUTTON_Y))

	right := &p.state.Controllers[input.Right]
	right.Stick = input.Vec2{
		X: axis(p.pad.Axis(sdl.CONTROLLER_AXIS_RIGHTX)),
		Y: -axis(p.pad.Axis(sdl.CONTROLLER_AXIS_RIGHTY)),
	}
	right.Trigger = trigger(p.pad.Axis(sdl.CONTROLLER_AXIS_TRIGGERRIGHT))
	right.Grip = boolAnalog(down(sdl.CONTROLLER_BUTTON_RIGHTSHOULDER))
	right.Tracked = input.Transition(right.Tracked, true)
	right.StickClick = input.Transition(right.StickClick, down(sdl.CONTROLLER_BUTTON_RIGHTSTICK))
	right.X1 = input.Transition(right.X1, down(sdl.CONTROLLER_BUTTON_A))
	right.X2 = input.Transition(right.X2, down(sdl.CONTROLLER_BUTTON_B))

	p.state.MenuButton = input.Transition(p.state.MenuButton, down(sdl.CONTROLLER_BUTTON_START))
	return true
}

// boolAnalog maps a digital shoulder button onto the grip axis.
func boolAnalog(down bool) float32 {
	if down {
		return 1
	}
	return 0
}
