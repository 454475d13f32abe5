// Package refreshrate drives the XR_FB_display_refresh_rate extension:
// enumerating, querying and requesting display refresh rates. All
// operations degrade to empty results when the extension is unavailable;
// nothing here is fatal.
package refreshrate

import (
	"math"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/openxr"
)

// ExtName must be requested before session creation for any of this
// package's operations to succeed.
const ExtName = "XR_FB_display_refresh_rate"

// UsualFPSSuspects lists the rates worth probing on common headsets.
var UsualFPSSuspects = []int{30, 60, 72, 80, 90, 100, 110, 120, 144, 165, 240, 360}

// All returns every display refresh rate the runtime reports, in runtime
// order. Unavailable extension or a failed call yields an empty slice.
func All(b openxr.Backend, withLog bool) []float32 {
	if !openxr.ExtAvailable(b, ExtName) {
		return nil
	}
	proc := b.GetFunction("xrEnumerateDisplayRefreshRatesFB")
	if proc == nil {
		logger.Err("xrEnumerateDisplayRefreshRatesFB did not resolve")
		return nil
	}

	rates, res := openxr.TwoCall(func(capacity uint32, count *uint32, items []float32) openxr.Result {
		var buf uintptr
		if len(items) > 0 {
			buf = uintptr(unsafe.Pointer(&items[0]))
		}
		return proc.Call(uintptr(b.Session()), uintptr(capacity), uintptr(unsafe.Pointer(count)), buf)
	})
	if res != openxr.Success {
		logger.Err("xrEnumerateDisplayRefreshRatesFB failed", zap.Stringer("result", res))
		return nil
	}

	if withLog {
		logger.Info("display refresh rates", zap.Int("count", len(rates)))
		for _, rate := range rates {
			logger.Info("  rate", zap.Float32("hz", rate))
		}
	}
	return rates
}

// Current returns the runtime's current refresh rate, or false when the
// extension is unavailable or the call fails.
func Current(b openxr.Backend) (float32, bool) {
	if !openxr.ExtAvailable(b, ExtName) {
		return 0, false
	}
	proc := b.GetFunction("xrGetDisplayRefreshRateFB")
	if proc == nil {
		logger.Err("xrGetDisplayRefreshRateFB did not resolve")
		return 0, false
	}

	var rate float32
	if res := proc.Call(uintptr(b.Session()), uintptr(unsafe.Pointer(&rate))); res != openxr.Success {
		logger.Err("xrGetDisplayRefreshRateFB failed", zap.Stringer("result", res))
		return 0, false
	}
	return rate, true
}

// Set requests a new refresh rate from the runtime and reports whether it
// was accepted. On failure the runtime's current rate is unchanged.
func Set(b openxr.Backend, rate float32, withLog bool) bool {
	if !openxr.ExtAvailable(b, ExtName) {
		return false
	}
	proc := b.GetFunction("xrRequestDisplayRefreshRateFB")
	if proc == nil {
		logger.Err("xrRequestDisplayRefreshRateFB did not resolve")
		return false
	}

	if res := proc.Call(uintptr(b.Session()), uintptr(math.Float32bits(rate))); res != openxr.Success {
		if withLog {
			logger.Err("xrRequestDisplayRefreshRateFB failed",
				zap.Float32("hz", rate), zap.Stringer("result", res))
		}
		return false
	}
	return true
}

// Probe tries each candidate rate and returns those the runtime accepted.
// The rate that was current at entry is restored on every exit path.
func Probe(b openxr.Backend, candidates []int, withLog bool) []float32 {
	prev, havePrev := Current(b)
	defer func() {
		if havePrev {
			Set(b, prev, withLog)
		}
	}()

	var available []float32
	for _, hz := range candidates {
		if Set(b, float32(hz), false) {
			available = append(available, float32(hz))
		}
	}

	if withLog {
		logger.Info("display refresh rates from selection", zap.Int("count", len(available)))
		for _, rate := range available {
			logger.Info("  rate", zap.Float32("hz", rate))
		}
	}
	return available
}
