package roundservice

import (
	"context"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

// Backend is the scoring backend as the round module sees it. GetRound returns
// rounddomain.ErrRoundNotFound for unknown rounds.
type Backend interface {
	ListRounds(ctx context.Context, scope sharedtypes.Scope) ([]rounddomain.Round, error)
	GetRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (rounddomain.Round, error)
	CreateRound(ctx context.Context, scope sharedtypes.Scope, in rounddomain.NewRound) (rounddomain.Round, error)
	UpdateRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, update rounddomain.Update) error
	DeleteRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) error

	GetAttendance(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) ([]rounddomain.AttendanceMark, error)
	MarkAttendance(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, mark rounddomain.AttendanceMark) error
	GetScores(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) ([]rounddomain.Score, error)
	SetScore(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, score rounddomain.Score) error
	GetPanels(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) ([]rounddomain.Panel, error)
	ReplacePanels(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, panels []rounddomain.Panel) error
	GetPanelAssignments(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) ([]rounddomain.PanelAssignment, error)
	AssignPanel(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, assignment rounddomain.PanelAssignment) error
}

// UndoSink records reversals of the actions this module performs.
type UndoSink interface {
	PushSaved(ctx context.Context, scope sharedtypes.Scope, label string, cmd undodomain.Command) (undodomain.Entry, error)
	PushLocal(ctx context.Context, scope sharedtypes.Scope, label, setter string, prior any) (undodomain.Entry, error)
}

// SetterRegistry is where local rollback setters are installed.
type SetterRegistry interface {
	Register(name string, fn undoservice.SetterFunc)
}

// ActionPublisher announces every mutating action, successful or not.
type ActionPublisher interface {
	PublishAction(ctx context.Context, payload sharedevents.ActionRecordedPayloadV1) error
}
