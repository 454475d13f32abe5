//go:build linux || android || darwin

// Package loader is the native openxr.Backend: it opens the platform's
// OpenXR loader library and resolves runtime symbols through
// xrGetInstanceProcAddr. The host owns instance and session creation;
// BindSession hands the resulting handles to the loader once the session
// exists.
package loader

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/openxr"
)

// DefaultLib is the loader library opened when none is configured.
const DefaultLib = "libopenxr_loader.so.1"

// Backend resolves symbols against a native OpenXR runtime. Main-thread
// only, like everything above it.
type Backend struct {
	lib         uintptr
	getProcAddr uintptr

	instance uint64
	session  uint64
	systemID uint64

	requested []string
	enabled   map[string]bool
	bound     bool
}

// New opens the loader library. Extensions are requested afterwards and the
// session handles bound once the host has created them.
func New(libPath string) (*Backend, error) {
	if libPath == "" {
		libPath = DefaultLib
	}
	lib, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("loader: opening %s: %w", libPath, err)
	}
	gpa, err := purego.Dlsym(lib, "xrGetInstanceProcAddr")
	if err != nil {
		return nil, fmt.Errorf("loader: resolving xrGetInstanceProcAddr: %w", err)
	}
	logger.Info("openxr loader opened", zap.String("lib", libPath))
	return &Backend{lib: lib, getProcAddr: gpa, enabled: map[string]bool{}}, nil
}

// XRType reports the native backend kind.
func (b *Backend) XRType() openxr.XRType { return openxr.XRTypeOpenXR }

// RequestExt records an extension to enable at instance creation. No-op
// once the session is bound.
func (b *Backend) RequestExt(name string) {
	if b.bound {
		logger.Warn("extension requested after session bind", zap.String("name", name))
		return
	}
	b.requested = append(b.requested, name)
}

// RequestedExts returns the extensions requested so far, for the host to
// pass into instance creation.
func (b *Backend) RequestedExts() []string { return b.requested }

// BindSession records the handles of the session the host created and the
// extensions the runtime actually enabled.
func (b *Backend) BindSession(instance, session, systemID uint64, enabled []string) {
	b.instance = instance
	b.session = session
	b.systemID = systemID
	b.enabled = make(map[string]bool, len(enabled))
	for _, e := range enabled {
		b.enabled[e] = true
	}
	b.bound = true
}

// ExtEnabled reports whether the runtime enabled the extension.
func (b *Backend) ExtEnabled(name string) bool { return b.enabled[name] }

// GetFunction resolves a symbol through xrGetInstanceProcAddr, or returns
// nil when the runtime does not know it.
func (b *Backend) GetFunction(name string) openxr.Proc {
	cstr := append([]byte(name), 0)
	var fn uintptr
	res, _, _ := purego.SyscallN(b.getProcAddr,
		uintptr(b.instance),
		uintptr(unsafe.Pointer(&cstr[0])),
		uintptr(unsafe.Pointer(&fn)),
	)
	runtime.KeepAlive(cstr)
	if openxr.Result(int32(res)) != openxr.Success || fn == 0 {
		return nil
	}
	return nativeProc(fn)
}

// Instance returns the bound instance handle.
func (b *Backend) Instance() uint64 { return b.instance }

// Session returns the bound session handle.
func (b *Backend) Session() uint64 { return b.session }

// SystemID returns the bound system id.
func (b *Backend) SystemID() uint64 { return b.systemID }

// nativeProc invokes a resolved runtime function through the C calling
// convention.
type nativeProc uintptr

// Call invokes the function.
func (p nativeProc) Call(args ...uintptr) openxr.Result {
	res, _, _ := purego.SyscallN(uintptr(p), args...)
	return openxr.Result(int32(res))
}
