package undoservice

import (
	"context"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

// Backend is the slice of the scoring backend compensating commands call into.
// Every method is a full overwrite of the addressed record.
type Backend interface {
	MarkAttendance(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, mark rounddomain.AttendanceMark) error
	SetScore(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, score rounddomain.Score) error
	AssignPanel(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, assignment rounddomain.PanelAssignment) error
	ReplacePanels(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, panels []rounddomain.Panel) error
	UpdateRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, update rounddomain.Update) error
	DeleteRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) error
	SetEventFlags(ctx context.Context, scope sharedtypes.Scope, flags eventdomain.Flags) error
	SetParticipantStatus(ctx context.Context, scope sharedtypes.Scope, change eventdomain.StatusChange) error
}
