package capture

import "errors"

// ErrInvalidArgument indicates a request rejected before the backend was
// touched: a negative source ID or a non-positive target dimension.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrEnumerationFailed indicates the backend failed to enumerate sources.
var ErrEnumerationFailed = errors.New("source enumeration failed")

// ErrCaptureFailed indicates the backend failed to capture a frame. This is
// a transient capture error, e.g. the source disappeared mid-call.
var ErrCaptureFailed = errors.New("capture failed")

// ErrInvalidBackendResult indicates the backend returned a structurally
// invalid frame: nil, or a pixel buffer that does not match the declared
// size. Distinct from ErrCaptureFailed because it signals a backend contract
// violation rather than a transient failure.
var ErrInvalidBackendResult = errors.New("invalid backend result")
