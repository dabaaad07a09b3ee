package roundservice

import (
	"context"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
)

type (
	RoundResult           = results.OperationResult[rounddomain.Round, error]
	RoundListResult       = results.OperationResult[[]rounddomain.Round, error]
	AttendanceResult      = results.OperationResult[[]rounddomain.AttendanceMark, error]
	ScoresResult          = results.OperationResult[[]rounddomain.Score, error]
	PanelsResult          = results.OperationResult[[]rounddomain.Panel, error]
	PanelAssignmentResult = results.OperationResult[[]rounddomain.PanelAssignment, error]
	DraftResult           = results.OperationResult[rounddomain.Patch, error]
)

// Direction moves a round one place in the ordering.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Service is the round lifecycle controller. Every mutation refetches the round from the
// backend before returning; nothing is applied optimistically.
type Service interface {
	ListRounds(ctx context.Context, scope sharedtypes.Scope) (RoundListResult, error)
	GetRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error)
	CreateRound(ctx context.Context, scope sharedtypes.Scope, in rounddomain.NewRound) (RoundResult, error)
	Publish(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error)
	Unpublish(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error)
	Activate(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error)
	Freeze(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error)
	Shortlist(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, policy rounddomain.EliminationPolicy) (RoundResult, error)
	Reveal(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error)
	Unreveal(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error)
	EditRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, patch rounddomain.Patch) (RoundResult, error)
	DeleteRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error)
	Reorder(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, dir Direction) (RoundResult, error)

	SetAttendance(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, marks []rounddomain.AttendanceMark) (AttendanceResult, error)
	SetScores(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, scores []rounddomain.Score) (ScoresResult, error)
	ReplacePanels(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, panels []rounddomain.Panel) (PanelsResult, error)
	AssignPanels(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, assignments []rounddomain.PanelAssignment) (PanelAssignmentResult, error)

	GetDraft(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (DraftResult, error)
	UpdateDraft(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, draft rounddomain.Patch) (DraftResult, error)
	SaveDraft(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error)
	DiscardDraft(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID)
}
