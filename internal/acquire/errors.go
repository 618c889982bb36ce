package acquire

import "fmt"

// Error represents a failure to obtain template bytes from a source.
// StatusCode is set for URL sources that returned a non-200 response.
type Error struct {
	Source     string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("acquisition error (%s): %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("acquisition error (%s): %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
