// Package openxr exposes the minimal OpenXR runtime surface that the
// extension subsystems build on: the backend accessor, resolved function
// pointers, status codes, wire-level structure tags and the two-call
// enumeration helper.
//
// Everything here runs on the thread that drives the XR main loop. Handles
// and resolved procs are valid for the lifetime of one session only and must
// not be cached across session restarts.
package openxr

// XRType identifies the kind of backend currently driving the session.
type XRType int

const (
	XRTypeNone XRType = iota
	XRTypeSimulator
	XRTypeOpenXR
	XRTypeWebXR
)

// String returns a human-readable backend name.
func (t XRType) String() string {
	switch t {
	case XRTypeNone:
		return "none"
	case XRTypeSimulator:
		return "simulator"
	case XRTypeOpenXR:
		return "openxr"
	case XRTypeWebXR:
		return "webxr"
	default:
		return "unknown"
	}
}

// Proc is a resolved runtime function pointer. Arguments follow the native
// convention: handles and integers as-is, pointers as uintptr of the Go
// pointer, and float arguments as their IEEE-754 bit pattern. A Proc must
// not be invoked after the session that resolved it has ended.
type Proc interface {
	Call(args ...uintptr) Result
}

// ProcFunc adapts a plain Go function to the Proc interface, the way
// emulated and test runtimes implement symbols.
type ProcFunc func(args ...uintptr) Result

// Call invokes the function.
func (f ProcFunc) Call(args ...uintptr) Result { return f(args...) }

// Backend is the runtime accessor every extension subsystem depends on.
//
// Instance, Session and SystemID are valid only after session initialization.
// RequestExt must be called before the session is created; afterwards it is
// a no-op. ExtEnabled is read-only once the session exists.
type Backend interface {
	XRType() XRType
	ExtEnabled(name string) bool
	RequestExt(name string)
	// GetFunction resolves a runtime symbol by name, or returns nil when
	// the symbol is unknown to the runtime.
	GetFunction(name string) Proc
	Instance() uint64
	Session() uint64
	SystemID() uint64
}

// ExtAvailable reports whether operations of the named extension may run:
// the backend must be OpenXR and the runtime must report the extension
// enabled. Subsystems return "unavailable" without touching any function
// pointer when this is false.
func ExtAvailable(b Backend, name string) bool {
	return b.XRType() == XRTypeOpenXR && b.ExtEnabled(name)
}
