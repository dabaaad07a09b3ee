package eventservice

import (
	"context"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
)

type (
	FlagsResult        = results.OperationResult[eventdomain.Flags, error]
	ParticipantsResult = results.OperationResult[[]eventdomain.Participant, error]
	ParticipantResult  = results.OperationResult[eventdomain.Participant, error]
)

// Service manages event-wide settings and the participant roster.
type Service interface {
	GetFlags(ctx context.Context, scope sharedtypes.Scope) (FlagsResult, error)
	SetFlags(ctx context.Context, scope sharedtypes.Scope, flags eventdomain.Flags) (FlagsResult, error)
	ListParticipants(ctx context.Context, scope sharedtypes.Scope) (ParticipantsResult, error)
	AddParticipant(ctx context.Context, scope sharedtypes.Scope, name string) (ParticipantResult, error)
	SetParticipantStatuses(ctx context.Context, scope sharedtypes.Scope, changes []eventdomain.StatusChange) (ParticipantsResult, error)
}
