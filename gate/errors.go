package gate

import "errors"

var (
	// ErrWindowNotFound means no running process matched the name fragment.
	ErrWindowNotFound = errors.New("window not found")

	// ErrActivationFailed means the window vanished or refused to come to the foreground.
	ErrActivationFailed = errors.New("window activation failed")

	// ErrInjectionFailed means the OS rejected a keyboard or mouse event.
	ErrInjectionFailed = errors.New("input injection failed")

	// ErrCaptureFailed means the capture target was closed or the region was invalid.
	ErrCaptureFailed = errors.New("capture failed")

	// ErrUnclassifiedTool means the tool is not in the classification table.
	ErrUnclassifiedTool = errors.New("unclassified tool")
)

// Code maps err onto the stable code reported to clients. Errors outside
// the taxonomy map to "".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWindowNotFound):
		return "WINDOW_NOT_FOUND"
	case errors.Is(err, ErrActivationFailed):
		return "ACTIVATION_FAILED"
	case errors.Is(err, ErrInjectionFailed):
		return "INJECTION_FAILED"
	case errors.Is(err, ErrCaptureFailed):
		return "CAPTURE_FAILED"
	case errors.Is(err, ErrUnclassifiedTool):
		return "UNKNOWN_TOOL"
	}
	return ""
}
