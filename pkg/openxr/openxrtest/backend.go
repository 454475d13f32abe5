// Package openxrtest provides a scriptable backend for exercising the
// extension subsystems without a native runtime. Tests register Go functions
// as runtime symbols and use the pointer helpers to read and write through
// the uintptr arguments the subsystems pass.
package openxrtest

import (
	"unsafe"

	"github.com/Faultbox/xrkit/pkg/openxr"
)

// Backend is a scriptable openxr.Backend. The zero value reports an OpenXR
// backend with no extensions enabled and no symbols registered.
type Backend struct {
	// Type overrides the reported backend kind; zero means OpenXR.
	Type openxr.XRType
	// Enabled holds the extensions the fake runtime reports enabled.
	Enabled map[string]bool
	// Funcs holds the registered symbols.
	Funcs map[string]openxr.ProcFunc
	// Requested records every RequestExt call, in order.
	Requested []string

	Inst  uint64
	Sess  uint64
	SysID uint64
}

// New returns a backend with the given extensions enabled.
func New(exts ...string) *Backend {
	b := &Backend{
		Enabled: map[string]bool{},
		Funcs:   map[string]openxr.ProcFunc{},
		Inst:    1,
		Sess:    2,
		SysID:   3,
	}
	for _, e := range exts {
		b.Enabled[e] = true
	}
	return b
}

// Register installs a Go function as a runtime symbol.
func (b *Backend) Register(name string, fn openxr.ProcFunc) {
	if b.Funcs == nil {
		b.Funcs = map[string]openxr.ProcFunc{}
	}
	b.Funcs[name] = fn
}

// XRType reports the scripted backend kind, OpenXR by default.
func (b *Backend) XRType() openxr.XRType {
	if b.Type == openxr.XRTypeNone {
		return openxr.XRTypeOpenXR
	}
	return b.Type
}

// ExtEnabled reports whether the extension was scripted as enabled.
func (b *Backend) ExtEnabled(name string) bool { return b.Enabled[name] }

// RequestExt records the request.
func (b *Backend) RequestExt(name string) { b.Requested = append(b.Requested, name) }

// GetFunction returns the registered symbol, or nil.
func (b *Backend) GetFunction(name string) openxr.Proc {
	fn, ok := b.Funcs[name]
	if !ok {
		return nil
	}
	return fn
}

// Instance returns the scripted instance handle.
func (b *Backend) Instance() uint64 { return b.Inst }

// Session returns the scripted session handle.
func (b *Backend) Session() uint64 { return b.Sess }

// SystemID returns the scripted system id.
func (b *Backend) SystemID() uint64 { return b.SysID }

// Get reads a T through a uintptr argument.
func Get[T any](p uintptr) T {
	return *(*T)(unsafe.Pointer(p))
}

// Put writes a T through a uintptr argument.
func Put[T any](p uintptr, v T) {
	*(*T)(unsafe.Pointer(p)) = v
}

// CString reads a null-terminated string through a uintptr argument.
func CString(p uintptr) string {
	if p == 0 {
		return ""
	}
	var out []byte
	for i := uintptr(0); ; i++ {
		b := *(*byte)(unsafe.Pointer(p + i))
		if b == 0 {
			return string(out)
		}
		out = append(out, b)
	}
}

// SliceOf views n elements of T at a uintptr argument as a slice. The
// memory stays owned by the caller that passed the pointer.
func SliceOf[T any](p uintptr, n uint32) []T {
	if p == 0 || n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(p)), n)
}
