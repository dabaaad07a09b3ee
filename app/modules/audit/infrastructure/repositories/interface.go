package auditdb

import (
	"context"

	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/uptrace/bun"
)

// Repository stores the activity log.
type Repository interface {
	InsertEntry(ctx context.Context, db bun.IDB, e *Entry) error
	// ListRecent returns up to limit entries for scope, newest first.
	ListRecent(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, limit int) ([]Entry, error)
}
