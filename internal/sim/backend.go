package sim

import (
	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/openxr"
)

// Backend adapts the emulated runtime to the openxr.Backend contract. It
// reports itself as an OpenXR backend so the extension gates treat it like
// the real thing.
type Backend struct {
	rt        *Runtime
	requested []string
	enabled   map[string]bool
	started   bool
}

// NewBackend wraps a runtime. Extensions are requested before StartSession;
// afterwards the enabled set is fixed.
func NewBackend(rt *Runtime) *Backend {
	return &Backend{rt: rt, enabled: map[string]bool{}}
}

// XRType reports OpenXR.
func (b *Backend) XRType() openxr.XRType { return openxr.XRTypeOpenXR }

// RequestExt records an extension to enable at session start.
func (b *Backend) RequestExt(name string) {
	if b.started {
		logger.Warn("extension requested after session start", zap.String("name", name))
		return
	}
	b.requested = append(b.requested, name)
}

// StartSession fixes the enabled extension set to the intersection of what
// was requested and what the runtime supports.
func (b *Backend) StartSession() {
	b.enabled = make(map[string]bool, len(b.requested))
	for _, name := range b.requested {
		if b.rt.SupportsExt(name) {
			b.enabled[name] = true
		} else {
			logger.Warn("requested extension not supported", zap.String("name", name))
		}
	}
	b.started = true
	logger.Info("sim session started", zap.Int("extensions", len(b.enabled)))
}

// ExtEnabled reports whether the extension is enabled on the session.
func (b *Backend) ExtEnabled(name string) bool { return b.started && b.enabled[name] }

// GetFunction resolves a symbol against the emulated runtime.
func (b *Backend) GetFunction(name string) openxr.Proc {
	if !b.started {
		return nil
	}
	return b.rt.Proc(name)
}

// Instance returns the emulated instance handle.
func (b *Backend) Instance() uint64 { return 1 }

// Session returns the emulated session handle.
func (b *Backend) Session() uint64 { return 2 }

// SystemID returns the emulated system id.
func (b *Backend) SystemID() uint64 { return 3 }
