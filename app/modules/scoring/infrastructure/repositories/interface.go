package scoringdb

import (
	"context"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/uptrace/bun"
)

// Repository defines the contract for scoring persistence. Every method takes the handle
// to run on; nil means the repository's own connection.
type Repository interface {
	ListRounds(ctx context.Context, db bun.IDB, scope sharedtypes.Scope) ([]Round, error)
	// GetRound returns ErrNotFound when no round with id exists in scope.
	GetRound(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) (*Round, error)
	// GetRoundForUpdate is GetRound with a row lock.
	GetRoundForUpdate(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) (*Round, error)
	// RoundAtOrdinal returns ErrNotFound when no round holds ordinal.
	RoundAtOrdinal(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, ordinal int) (*Round, error)
	MaxOrdinal(ctx context.Context, db bun.IDB, scope sharedtypes.Scope) (int, error)
	InsertRound(ctx context.Context, db bun.IDB, round *Round) error
	UpdateRound(ctx context.Context, db bun.IDB, round *Round) error
	DeleteRound(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) error

	ListAttendance(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Attendance, error)
	UpsertAttendance(ctx context.Context, db bun.IDB, row *Attendance) error
	DeleteAttendance(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, participantID sharedtypes.ParticipantID) error
	ListScores(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Score, error)
	UpsertScore(ctx context.Context, db bun.IDB, row *Score) error
	DeleteScore(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, participantID sharedtypes.ParticipantID, criterion string) error
	ListPanels(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Panel, error)
	ReplacePanels(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, panels []Panel) error
	ListPanelAssignments(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]PanelAssignment, error)
	UpsertPanelAssignment(ctx context.Context, db bun.IDB, row *PanelAssignment) error
	DeletePanelAssignment(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, participantID sharedtypes.ParticipantID) error

	// GetFlags returns an empty map when the event has no flags yet.
	GetFlags(ctx context.Context, db bun.IDB, scope sharedtypes.Scope) (eventdomain.Flags, error)
	ReplaceFlags(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, flags eventdomain.Flags) error
	ListParticipants(ctx context.Context, db bun.IDB, scope sharedtypes.Scope) ([]Participant, error)
	InsertParticipant(ctx context.Context, db bun.IDB, p *Participant) error
	// UpdateParticipantStatus returns ErrNotFound for an unknown participant.
	UpdateParticipantStatus(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.ParticipantID, status eventdomain.ParticipantStatus, eliminatedIn *sharedtypes.RoundID) error
}
