package simhands

import (
	"testing"
	"unsafe"

	"github.com/Faultbox/xrkit/pkg/openxr"
	"github.com/Faultbox/xrkit/pkg/openxr/openxrtest"
)

// fakeTracking scripts the simultaneous-tracking symbols onto a backend.
type fakeTracking struct {
	supports bool
	active   bool
	calls    int
}

func install(b *openxrtest.Backend, f *fakeTracking) {
	b.Register("xrGetSystemProperties", func(args ...uintptr) openxr.Result {
		f.calls++
		props := (*openxr.SystemProperties)(unsafe.Pointer(args[2]))
		if props.Next == nil {
			return openxr.ErrorValidationFailure
		}
		chained := (*systemPropertiesMeta)(props.Next)
		if chained.Type != openxr.TypeSystemSimultaneousHandsAndControllersPropertiesMeta {
			return openxr.ErrorValidationFailure
		}
		chained.Supports = 0
		if f.supports {
			chained.Supports = 1
		}
		return openxr.Success
	})
	b.Register("xrResumeSimultaneousHandsAndControllersTrackingMETA", func(args ...uintptr) openxr.Result {
		f.calls++
		info := (*trackingInfoMeta)(unsafe.Pointer(args[1]))
		if info.Type != openxr.TypeSimultaneousHandsAndControllersTrackingResumeInfoMeta {
			return openxr.ErrorValidationFailure
		}
		f.active = true
		return openxr.Success
	})
	b.Register("xrPauseSimultaneousHandsAndControllersTrackingMETA", func(args ...uintptr) openxr.Result {
		f.calls++
		info := (*trackingInfoMeta)(unsafe.Pointer(args[1]))
		if info.Type != openxr.TypeSimultaneousHandsAndControllersTrackingPauseInfoMeta {
			return openxr.ErrorValidationFailure
		}
		f.active = false
		return openxr.Success
	})
}

func TestSupportedResumePause(t *testing.T) {
	b := openxrtest.New(ExtName)
	f := &fakeTracking{supports: true}
	install(b, f)

	if !Supported(b, false) {
		t.Fatal("expected Supported true")
	}
	if !Resume(b, false) {
		t.Fatal("expected Resume true")
	}
	if !f.active {
		t.Error("expected tracking resumed")
	}
	if !Pause(b, false) {
		t.Fatal("expected Pause true")
	}
	if f.active {
		t.Error("expected tracking paused")
	}
}

func TestUnsupportedRuntime(t *testing.T) {
	b := openxrtest.New(ExtName)
	f := &fakeTracking{supports: false}
	install(b, f)

	if Supported(b, false) {
		t.Error("expected Supported false")
	}
	if Resume(b, false) {
		t.Error("expected Resume false on an unsupporting runtime")
	}
	if Pause(b, false) {
		t.Error("expected Pause false on an unsupporting runtime")
	}
	if f.active {
		t.Error("tracking must not activate")
	}
}

func TestExtensionNotEnabled(t *testing.T) {
	b := openxrtest.New() // extension not enabled
	f := &fakeTracking{supports: true}
	install(b, f)

	if Supported(b, false) || Resume(b, false) || Pause(b, false) {
		t.Error("expected every operation to report false")
	}
	if f.calls != 0 {
		t.Errorf("expected no proc invocations, got %d", f.calls)
	}
}

func TestProbeFailureReportsFalse(t *testing.T) {
	b := openxrtest.New(ExtName)
	b.Register("xrGetSystemProperties", func(args ...uintptr) openxr.Result {
		return openxr.ErrorRuntimeFailure
	})
	if Supported(b, false) {
		t.Error("expected Supported false on a failing query")
	}
}
