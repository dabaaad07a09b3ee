package auditservice

import (
	"context"

	auditdomain "github.com/Black-And-White-Club/stage-console/app/modules/audit/domain"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
)

type (
	EntryResult   = results.OperationResult[auditdomain.Entry, error]
	EntriesResult = results.OperationResult[[]auditdomain.Entry, error]
)

// Service records console activity and serves the log screen.
type Service interface {
	RecordAction(ctx context.Context, payload sharedevents.ActionRecordedPayloadV1, correlationID string) (EntryResult, error)
	RecordUndoChange(ctx context.Context, payload sharedevents.UndoSlotChangedPayloadV1, correlationID string) (EntryResult, error)
	ListRecent(ctx context.Context, scope sharedtypes.Scope, limit int) (EntriesResult, error)
}
