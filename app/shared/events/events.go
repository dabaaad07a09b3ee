// Package sharedevents defines the console's message topics and payloads.
package sharedevents

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

const (
	// ActionRecordedV1 carries every mutating console action, successful or not.
	ActionRecordedV1 = "console.action.v1"
	// UndoSlotChangedV1 carries undo register changes for a scope.
	UndoSlotChangedV1 = "console.undo.v1"
)

// ActionRecordedPayloadV1 describes one operator action against the backend.
type ActionRecordedPayloadV1 struct {
	Scope      sharedtypes.Scope    `json:"scope"`
	Action     string               `json:"action"`
	RoundID    *sharedtypes.RoundID `json:"round_id,omitempty"`
	Label      string               `json:"label"`
	Outcome    string               `json:"outcome"`
	Error      string               `json:"error,omitempty"`
	Undoable   bool                 `json:"undoable"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// UndoSlotChangedPayloadV1 mirrors a register change.
type UndoSlotChangedPayloadV1 struct {
	Scope      sharedtypes.Scope `json:"scope"`
	Reason     string            `json:"reason"`
	EntryID    string            `json:"entry_id,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Label      string            `json:"label,omitempty"`
	Command    string            `json:"command,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
