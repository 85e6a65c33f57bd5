package workflow

import "errors"

// User-facing validation messages.
const (
	MsgURLRequired = "Please enter a GitHub repository URL (required)."
	MsgURLInvalid  = "Please enter a valid GitHub repo URL like https://github.com/owner/repo"
)

// FieldURL names the repository URL input.
const FieldURL = "url"

// ErrBusy is returned when a run is already in flight.
var ErrBusy = errors.New("an analysis is already running")

// ValidationError rejects input before any remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
