package cli

import (
	"context"
	"errors"

	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitCanceled = 130
)

// ExitCode maps a command error to a process exit code. Invalid input or
// configuration exits with ExitUsage, an interrupt with ExitCanceled and
// anything else with ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	switch pkgerrors.GetCode(err) {
	case pkgerrors.ErrCodeInvalidInput,
		pkgerrors.ErrCodeInvalidConfig,
		pkgerrors.ErrCodeInvalidKey,
		pkgerrors.ErrCodeInvalidNodeID,
		pkgerrors.ErrCodeInvalidDataURI,
		pkgerrors.ErrCodeUnsupported:
		return ExitUsage
	}
	return ExitFailure
}

// ErrorMessage returns the text printed for a failed command.
func ErrorMessage(err error) string {
	return "Error: " + pkgerrors.UserMessage(err)
}
