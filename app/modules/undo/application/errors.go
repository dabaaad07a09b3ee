package undoservice

import (
	"errors"
	"fmt"

	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNotConfirmed  = errors.New("undo not confirmed")
	ErrUndoInFlight  = errors.New("an undo is already running for this scope")
	ErrEntryReplaced = errors.New("undo entry was replaced while awaiting confirmation")
	ErrUnknownSetter = errors.New("unknown local setter")
	ErrInvalidScope  = errors.New("invalid scope")
)

// UnsupportedCommandError is returned when no handler is registered for a command type.
type UnsupportedCommandError struct {
	Type undodomain.CommandType
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("unsupported undo command %q", e.Type)
}

// ConfirmationRequiredError carries the prompt the operator declined or was never shown.
type ConfirmationRequiredError struct {
	Prompt Prompt
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotConfirmed, e.Prompt.Title)
}

func (e *ConfirmationRequiredError) Unwrap() error { return ErrNotConfirmed }
