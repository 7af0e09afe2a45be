package cli

import (
	"errors"
	"fmt"
)

// Exit codes for the pipai process.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// usageError marks failures caused by how the command was invoked rather
// than by what it tried to do.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	return ExitFailure
}
