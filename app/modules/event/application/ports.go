package eventservice

import (
	"context"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

// Backend is the scoring backend as the event module sees it.
type Backend interface {
	GetEventFlags(ctx context.Context, scope sharedtypes.Scope) (eventdomain.Flags, error)
	SetEventFlags(ctx context.Context, scope sharedtypes.Scope, flags eventdomain.Flags) error
	ListParticipants(ctx context.Context, scope sharedtypes.Scope) ([]eventdomain.Participant, error)
	AddParticipant(ctx context.Context, scope sharedtypes.Scope, name string) (eventdomain.Participant, error)
	SetParticipantStatus(ctx context.Context, scope sharedtypes.Scope, change eventdomain.StatusChange) error
}

// UndoSink records reversals of event-level changes.
type UndoSink interface {
	PushSaved(ctx context.Context, scope sharedtypes.Scope, label string, cmd undodomain.Command) (undodomain.Entry, error)
}

// ActionPublisher announces every mutating action.
type ActionPublisher interface {
	PublishAction(ctx context.Context, payload sharedevents.ActionRecordedPayloadV1) error
}
