package undoservice

import (
	"context"
	"fmt"
	"log/slog"

	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
)

// Prompt is what the operator is asked before an irreversible or remote action.
type Prompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Confirmer asks the operator to approve a prompt.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, p Prompt) (bool, error) { return f(ctx, p) }

// Approve confirms every prompt.
var Approve = ConfirmerFunc(func(context.Context, Prompt) (bool, error) { return true, nil })

// Decline refuses every prompt.
var Decline = ConfirmerFunc(func(context.Context, Prompt) (bool, error) { return false, nil })

// Gate decides whether an action needs operator approval and asks for it.
type Gate struct {
	logger *slog.Logger
}

func NewGate(logger *slog.Logger) *Gate {
	return &Gate{logger: logger}
}

// RequiresConfirmation is true exactly for saved entries.
func (g *Gate) RequiresConfirmation(e undodomain.Entry) bool {
	return e.Kind == undodomain.KindSaved
}

// PromptFor builds the prompt shown before undoing e.
func (g *Gate) PromptFor(e undodomain.Entry) Prompt {
	return Prompt{
		Title:   fmt.Sprintf("Undo: %s", e.Label),
		Message: "This will send a change to the server and overwrite the current values.",
	}
}

// Confirm returns true for local entries without asking. Saved entries go through c; a nil
// confirmer counts as a refusal.
func (g *Gate) Confirm(ctx context.Context, c Confirmer, e undodomain.Entry) (bool, error) {
	if !g.RequiresConfirmation(e) {
		return true, nil
	}
	if c == nil {
		return false, nil
	}
	ok, err := c.Confirm(ctx, g.PromptFor(e))
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		g.logger.InfoContext(ctx, "Undo declined by operator",
			attr.ExtractCorrelationID(ctx),
			attr.Scope(e.Scope.String()),
			attr.String("label", e.Label),
		)
	}
	return ok, nil
}

// WarnNonUndoable asks before an action that cannot be reversed and calls proceed only when
// the operator approves. It reports whether proceed ran.
func (g *Gate) WarnNonUndoable(ctx context.Context, c Confirmer, title, message string, proceed func(context.Context) error) (bool, error) {
	if c == nil {
		return false, nil
	}
	ok, err := c.Confirm(ctx, Prompt{Title: title, Message: message})
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return false, nil
	}
	return true, proceed(ctx)
}
