package openxr

import (
	"errors"
	"fmt"
)

// Result is the status code returned by every runtime call. Negative values
// are errors; zero and positive values are success, possibly qualified.
type Result int32

const (
	Success            Result = 0
	TimeoutExpired     Result = 1
	SessionLossPending Result = 3

	ErrorValidationFailure   Result = -1
	ErrorRuntimeFailure      Result = -2
	ErrorFunctionUnsupported Result = -7
	ErrorFeatureUnsupported  Result = -8
	ErrorExtensionNotPresent Result = -9
	ErrorHandleInvalid       Result = -12
	ErrorPathInvalid         Result = -19

	// RenderModelUnavailableFB is the qualified success the render-model
	// extension returns for a model with no connected device.
	RenderModelUnavailableFB Result = 1000119020
)

// IsSuccess reports whether the result is in the success class (qualified
// successes included).
func (r Result) IsSuccess() bool { return r >= 0 }

// String returns the registry name of known results, or a numeric form.
func (r Result) String() string {
	switch r {
	case Success:
		return "XR_SUCCESS"
	case TimeoutExpired:
		return "XR_TIMEOUT_EXPIRED"
	case SessionLossPending:
		return "XR_SESSION_LOSS_PENDING"
	case ErrorValidationFailure:
		return "XR_ERROR_VALIDATION_FAILURE"
	case ErrorRuntimeFailure:
		return "XR_ERROR_RUNTIME_FAILURE"
	case ErrorFunctionUnsupported:
		return "XR_ERROR_FUNCTION_UNSUPPORTED"
	case ErrorFeatureUnsupported:
		return "XR_ERROR_FEATURE_UNSUPPORTED"
	case ErrorExtensionNotPresent:
		return "XR_ERROR_EXTENSION_NOT_PRESENT"
	case ErrorHandleInvalid:
		return "XR_ERROR_HANDLE_INVALID"
	case ErrorPathInvalid:
		return "XR_ERROR_PATH_INVALID"
	case RenderModelUnavailableFB:
		return "XR_RENDER_MODEL_UNAVAILABLE_FB"
	default:
		return fmt.Sprintf("XR_RESULT(%d)", int32(r))
	}
}

// ErrUnavailable marks a feature that cannot run on the current backend:
// the extension was not requested or enabled, the backend is not OpenXR, or
// a required symbol failed to resolve. Callers proceed without the feature.
var ErrUnavailable = errors.New("openxr: extension not available")

// Error carries a non-success runtime status together with the call that
// produced it.
type Error struct {
	Op     string
	Result Result
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("openxr: %s returned %s", e.Op, e.Result)
}

// ResultError wraps a runtime status into an error. Qualified successes are
// still wrapped: callers that tolerate them must check the Result before
// calling this.
func ResultError(op string, r Result) error {
	return &Error{Op: op, Result: r}
}
