package quiz

import (
	"fmt"

	"github.com/m3rciful/hskbot/internal/vocab"
)

// InvalidLevelError reports a level outside the HSK range. The session is
// left untouched.
type InvalidLevelError struct {
	Raw string
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("quiz: level %q must be between %d and %d", e.Raw, vocab.MinLevel, vocab.MaxLevel)
}

// Code returns the stable error code used in handler logs.
func (e *InvalidLevelError) Code() string { return "INVALID_LEVEL" }

// InvalidStateError reports an operation attempted out of sequence, such as
// picking a direction before a level. The session is left untouched.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("quiz: %s is not valid in state %s", e.Op, e.State)
}

// Code returns the stable error code used in handler logs.
func (e *InvalidStateError) Code() string { return "INVALID_STATE" }

// InvalidDirectionError reports an unrecognised direction value.
type InvalidDirectionError struct {
	Raw string
}

func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("quiz: unknown direction %q", e.Raw)
}

// Code returns the stable error code used in handler logs.
func (e *InvalidDirectionError) Code() string { return "INVALID_DIRECTION" }

// EmptyPoolError reports that the chosen level has no vocabulary to draw
// from. It wraps the store's lookup error.
type EmptyPoolError struct {
	Level int
	Err   error
}

func (e *EmptyPoolError) Error() string {
	return fmt.Sprintf("quiz: no questions available for HSK level %d", e.Level)
}

func (e *EmptyPoolError) Unwrap() error { return e.Err }

// Code returns the stable error code used in handler logs.
func (e *EmptyPoolError) Code() string { return "EMPTY_POOL" }

// UnknownCommandError reports a command outside the engine contract.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("quiz: unknown command %q", e.Command)
}

// Code returns the stable error code used in handler logs.
func (e *UnknownCommandError) Code() string { return "UNKNOWN_COMMAND" }
