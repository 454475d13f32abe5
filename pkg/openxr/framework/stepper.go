// Package framework hosts steppers inside the XR main loop: per-frame event
// delivery, initialization gating and orderly multi-frame shutdown.
package framework

import (
	"github.com/Faultbox/xrkit/pkg/input"
	"github.com/Faultbox/xrkit/pkg/openxr"
)

// StepperID identifies one hosted stepper instance.
type StepperID = string

// Event is a (from, key, value) tuple delivered to every running stepper
// once per frame. Steppers filter by From for per-instance events or by Key
// for global ones.
type Event struct {
	From  StepperID
	Key   string
	Value string
}

// MainThreadToken proves a callback runs on the main loop thread and
// carries the frame's event report.
type MainThreadToken struct {
	events []Event
}

// NewToken returns a fresh per-frame token.
func NewToken() *MainThreadToken { return &MainThreadToken{} }

// Events returns the events drained into this frame.
func (t *MainThreadToken) Events() []Event { return t.events }

// Context is the host state handed to every stepper at initialization.
// There are no hidden globals: subsystems read the backend and input
// surfaces from here.
type Context struct {
	Backend openxr.Backend
	Input   input.System

	host *Steppers
}

// SendEvent queues an action on the hosting Steppers for the next frame.
// Safe to call from stepper callbacks.
func (c *Context) SendEvent(a Action) {
	if c.host != nil {
		c.host.SendEvent(a)
	}
}

// Stepper is the lifecycle contract the main loop drives:
//
//	Initialize -> InitializeDone* -> (Step)* -> Shutdown -> ShutdownDone*
//
// Step receives the frame token; implementations handle the frame's events
// first and draw after, so drawing sees the effects of this frame's events.
// All callbacks run on the main thread. After Shutdown has been triggered
// the host never calls Step again for that stepper.
type Stepper interface {
	// Initialize is called once, before the stepper's first frame.
	// Returning false aborts the add; the stepper is never stepped.
	Initialize(id StepperID, ctx *Context) bool

	// InitializeDone is polled after a successful Initialize until it
	// returns true; only then does the stepper start running.
	InitializeDone() bool

	// Enabled gates Step without removing the stepper.
	Enabled() bool

	// Step runs once per frame while the stepper is running and enabled.
	Step(token *MainThreadToken)

	// Shutdown triggers resource release.
	Shutdown()

	// ShutdownDone is polled once per frame after Shutdown until it
	// returns true, at which point the stepper is removed.
	ShutdownDone() bool
}

// Base supplies the single-frame lifecycle defaults. Embed it and override
// what the stepper needs.
type Base struct {
	ID  StepperID
	Ctx *Context
}

// Initialize records the id and host context.
func (b *Base) Initialize(id StepperID, ctx *Context) bool {
	b.ID = id
	b.Ctx = ctx
	return true
}

// InitializeDone reports single-frame initialization.
func (b *Base) InitializeDone() bool { return true }

// Enabled reports the stepper wants stepping.
func (b *Base) Enabled() bool { return true }

// Shutdown releases nothing by default.
func (b *Base) Shutdown() {}

// ShutdownDone reports single-frame shutdown.
func (b *Base) ShutdownDone() bool { return true }
