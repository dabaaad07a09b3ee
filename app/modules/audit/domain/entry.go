package auditdomain

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

// Source tells which topic an entry came from.
type Source string

const (
	SourceAction Source = "action"
	SourceUndo   Source = "undo"
)

// Entry is one line of an event's activity log.
type Entry struct {
	ID            int64                `json:"id"`
	Scope         sharedtypes.Scope    `json:"scope"`
	Source        Source               `json:"source"`
	Action        string               `json:"action"`
	RoundID       *sharedtypes.RoundID `json:"round_id,omitempty"`
	Label         string               `json:"label,omitempty"`
	Outcome       string               `json:"outcome,omitempty"`
	Error         string               `json:"error,omitempty"`
	Undoable      bool                 `json:"undoable"`
	CorrelationID string               `json:"correlation_id,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}
