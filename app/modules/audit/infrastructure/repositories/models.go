package auditdb

import (
	"time"

	auditdomain "github.com/Black-And-White-Club/stage-console/app/modules/audit/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/uptrace/bun"
)

// Entry is a stored activity log row.
type Entry struct {
	bun.BaseModel `bun:"table:console_audit_log,alias:cal"`
	ID            int64                `bun:"id,pk,autoincrement"`
	Scope         sharedtypes.Scope    `bun:"scope,notnull"`
	Source        auditdomain.Source   `bun:"source,notnull"`
	Action        string               `bun:"action,notnull"`
	RoundID       *sharedtypes.RoundID `bun:"round_id"`
	Label         string               `bun:"label,notnull,default:''"`
	Outcome       string               `bun:"outcome,notnull,default:''"`
	Error         string               `bun:"error,notnull,default:''"`
	Undoable      bool                 `bun:"undoable,notnull,default:false"`
	CorrelationID string               `bun:"correlation_id,notnull,default:''"`
	OccurredAt    time.Time            `bun:"occurred_at,notnull"`
	CreatedAt     time.Time            `bun:",nullzero,notnull,default:current_timestamp"`
}

func (e *Entry) ToDomain() auditdomain.Entry {
	return auditdomain.Entry{
		ID:            e.ID,
		Scope:         e.Scope,
		Source:        e.Source,
		Action:        e.Action,
		RoundID:       e.RoundID,
		Label:         e.Label,
		Outcome:       e.Outcome,
		Error:         e.Error,
		Undoable:      e.Undoable,
		CorrelationID: e.CorrelationID,
		OccurredAt:    e.OccurredAt,
	}
}

// FromDomain builds a row to insert.
func FromDomain(e auditdomain.Entry) *Entry {
	return &Entry{
		Scope:         e.Scope,
		Source:        e.Source,
		Action:        e.Action,
		RoundID:       e.RoundID,
		Label:         e.Label,
		Outcome:       e.Outcome,
		Error:         e.Error,
		Undoable:      e.Undoable,
		CorrelationID: e.CorrelationID,
		OccurredAt:    e.OccurredAt,
	}
}
