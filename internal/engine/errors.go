package engine

import "fmt"

// EngineError represents a failure inside the template merge engine:
// a corrupt template archive, a malformed tag, or an I/O failure while
// saving the output.
type EngineError struct {
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("engine error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("engine error: %s", e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}
