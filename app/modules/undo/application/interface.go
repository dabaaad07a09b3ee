package undoservice

import (
	"context"

	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
)

// ExecuteResult is the applied entry on success, or a refusal (nothing to undo, not
// confirmed, in flight, replaced) on failure.
type ExecuteResult = results.OperationResult[undodomain.Entry, error]

// Service is the undo facade other modules and the HTTP layer use.
type Service interface {
	PushLocal(ctx context.Context, scope sharedtypes.Scope, label, setter string, prior any) (undodomain.Entry, error)
	PushSaved(ctx context.Context, scope sharedtypes.Scope, label string, cmd undodomain.Command) (undodomain.Entry, error)
	Peek(scope sharedtypes.Scope) *undodomain.Entry
	Clear(ctx context.Context, scope sharedtypes.Scope)
	Navigate(ctx context.Context, scope sharedtypes.Scope, route string) bool
	Execute(ctx context.Context, scope sharedtypes.Scope, confirmer Confirmer) (ExecuteResult, error)
	Subscribe(scope sharedtypes.Scope, l Listener) (unsubscribe func())
	Gate() *Gate
	Setters() *Setters
}
