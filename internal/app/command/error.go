package command

import (
	"fmt"
)

// Error marks a failure that happened while a command was running, as opposed
// to a usage error reported by cobra before RunE is reached.
type Error struct {
	Inner   error
	Command string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Inner)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func WrapError(command string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{
		Inner:   err,
		Command: command,
	}
}
