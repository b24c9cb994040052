package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable marks a model call that kept failing transiently
	// after the retry budget was spent.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrToolLoopExceeded marks a turn the model would not conclude within
	// the configured number of tool rounds.
	ErrToolLoopExceeded = errors.New("tool loop exceeded")
)

// ModelUnavailableError reports how many attempts were made before giving up.
type ModelUnavailableError struct {
	Attempts int
	Err      error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }

// ToolLoopError reports the round ceiling that was hit.
type ToolLoopError struct {
	Rounds int
}

func (e *ToolLoopError) Error() string {
	return fmt.Sprintf("model exceeded %d tool rounds without a final answer", e.Rounds)
}

func (e *ToolLoopError) Is(target error) bool { return target == ErrToolLoopExceeded }
