package auditdb

import (
	"context"
	"fmt"

	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new audit repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) InsertEntry(ctx context.Context, db bun.IDB, e *Entry) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(e).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (r *Impl) ListRecent(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, limit int) ([]Entry, error) {
	db = r.resolveDB(db)
	var rows []Entry
	err := db.NewSelect().
		Model(&rows).
		Where("scope = ?", scope).
		Order("occurred_at DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return rows, nil
}
