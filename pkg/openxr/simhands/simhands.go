// Package simhands drives the XR_META_simultaneous_hands_and_controllers
// extension: probing runtime support and resuming or pausing the combined
// tracking mode. All operations are stateless free functions; repeated
// resume and pause are the runtime's responsibility.
package simhands

import (
	"runtime"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/openxr"
)

// ExtName must be requested before session creation for any of this
// package's operations to succeed.
const ExtName = "XR_META_simultaneous_hands_and_controllers"

// systemPropertiesMeta mirrors
// XrSystemSimultaneousHandsAndControllersPropertiesMETA.
type systemPropertiesMeta struct {
	Type     openxr.StructureType
	_        uint32
	Next     unsafe.Pointer
	Supports openxr.Bool32
}

// trackingInfoMeta is the minimal chained info structure shared by the
// resume and pause calls: a type tag and a null next pointer.
type trackingInfoMeta struct {
	Type openxr.StructureType
	_    uint32
	Next unsafe.Pointer
}

// Supported probes whether the runtime can track hands and controllers at
// the same time, via a system-properties query with a chained extension
// structure. Any failure reports false.
func Supported(b openxr.Backend, withLog bool) bool {
	if !openxr.ExtAvailable(b, ExtName) {
		return false
	}

	props := systemPropertiesMeta{
		Type: openxr.TypeSystemSimultaneousHandsAndControllersPropertiesMeta,
	}
	res := openxr.QuerySystemProperties(b, unsafe.Pointer(&props))
	runtime.KeepAlive(&props)
	if res != openxr.Success {
		logger.Err("simultaneous hands and controllers probe failed", zap.Stringer("result", res))
		return false
	}

	if withLog {
		logger.Info("simultaneous hands and controllers", zap.Bool("supported", props.Supports.True()))
	}
	return props.Supports.True()
}

// Resume enables simultaneous tracking. Reports false when unsupported or
// when the runtime rejects the call.
func Resume(b openxr.Backend, withLog bool) bool {
	return track(b, withLog,
		"xrResumeSimultaneousHandsAndControllersTrackingMETA",
		openxr.TypeSimultaneousHandsAndControllersTrackingResumeInfoMeta)
}

// Pause disables simultaneous tracking. Symmetric to Resume.
func Pause(b openxr.Backend, withLog bool) bool {
	return track(b, withLog,
		"xrPauseSimultaneousHandsAndControllersTrackingMETA",
		openxr.TypeSimultaneousHandsAndControllersTrackingPauseInfoMeta)
}

func track(b openxr.Backend, withLog bool, symbol string, tag openxr.StructureType) bool {
	if !Supported(b, false) {
		return false
	}
	proc := b.GetFunction(symbol)
	if proc == nil {
		logger.Err("symbol did not resolve", zap.String("name", symbol))
		return false
	}

	info := trackingInfoMeta{Type: tag}
	res := proc.Call(uintptr(b.Session()), uintptr(unsafe.Pointer(&info)))
	runtime.KeepAlive(&info)
	if res != openxr.Success {
		logger.Err("tracking mode change failed", zap.String("call", symbol), zap.Stringer("result", res))
		return false
	}
	if withLog {
		logger.Info("tracking mode changed", zap.String("call", symbol))
	}
	return true
}
