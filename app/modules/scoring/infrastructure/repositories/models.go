package scoringdb

import (
	"time"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/uptrace/bun"
)

// Round is one stage of an event. (scope, ordinal) is unique; the constraint is deferred
// so two rounds can trade ordinals inside one transaction.
type Round struct {
	bun.BaseModel `bun:"table:console_rounds,alias:cr"`
	ID            sharedtypes.RoundID        `bun:"id,pk,autoincrement"`
	Scope         sharedtypes.Scope          `bun:"scope,notnull"`
	Ordinal       int                        `bun:"ordinal,notnull"`
	Name          string                     `bun:"name,notnull"`
	Description   string                     `bun:"description,notnull,default:''"`
	Metadata      rounddomain.Metadata       `bun:"metadata,type:jsonb,notnull,default:'{}'"`
	State         rounddomain.LifecycleState `bun:"state,notnull"`
	Frozen        bool                       `bun:"frozen,notnull,default:false"`
	CreatedAt     time.Time                  `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time                  `bun:",nullzero,notnull,default:current_timestamp"`
}

// ToDomain converts the row.
func (r *Round) ToDomain() rounddomain.Round {
	return rounddomain.Round{
		ID:          r.ID,
		Scope:       r.Scope,
		Ordinal:     r.Ordinal,
		Name:        r.Name,
		Description: r.Description,
		Metadata:    r.Metadata,
		State:       r.State,
		Frozen:      r.Frozen,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Attendance is one participant's presence mark for a round.
type Attendance struct {
	bun.BaseModel `bun:"table:console_attendance,alias:ca"`
	RoundID       sharedtypes.RoundID       `bun:"round_id,pk"`
	ParticipantID sharedtypes.ParticipantID `bun:"participant_id,pk"`
	Present       bool                      `bun:"present,notnull"`
}

// Score is one criterion score. Absent rows mean no score.
type Score struct {
	bun.BaseModel `bun:"table:console_scores,alias:cs"`
	RoundID       sharedtypes.RoundID       `bun:"round_id,pk"`
	ParticipantID sharedtypes.ParticipantID `bun:"participant_id,pk"`
	Criterion     string                    `bun:"criterion,pk"`
	Value         float64                   `bun:"value,notnull"`
}

// Panel is a judging panel of a round.
type Panel struct {
	bun.BaseModel `bun:"table:console_panels,alias:cp"`
	RoundID       sharedtypes.RoundID `bun:"round_id,pk"`
	ID            sharedtypes.PanelID `bun:"panel_id,pk"`
	Name          string              `bun:"name,notnull,default:''"`
	Judges        []string            `bun:"judges,array"`
}

// PanelAssignment places a participant on a panel. Unassigned participants have no row.
type PanelAssignment struct {
	bun.BaseModel `bun:"table:console_panel_assignments,alias:cpa"`
	RoundID       sharedtypes.RoundID       `bun:"round_id,pk"`
	ParticipantID sharedtypes.ParticipantID `bun:"participant_id,pk"`
	PanelID       sharedtypes.PanelID       `bun:"panel_id,notnull"`
}

// EventFlags holds an event's boolean switches as one document.
type EventFlags struct {
	bun.BaseModel `bun:"table:console_event_flags,alias:cef"`
	Scope         sharedtypes.Scope `bun:"scope,pk"`
	Flags         eventdomain.Flags `bun:"flags,type:jsonb,notnull"`
	UpdatedAt     time.Time         `bun:",nullzero,notnull,default:current_timestamp"`
}

// Participant is an entrant in an event.
type Participant struct {
	bun.BaseModel     `bun:"table:console_participants,alias:cpt"`
	ID                sharedtypes.ParticipantID     `bun:"id,pk,autoincrement"`
	Scope             sharedtypes.Scope             `bun:"scope,notnull"`
	Name              string                        `bun:"name,notnull"`
	Status            eventdomain.ParticipantStatus `bun:"status,notnull"`
	EliminatedInRound *sharedtypes.RoundID          `bun:"eliminated_in_round"`
}

// ToDomain converts the row.
func (p *Participant) ToDomain() eventdomain.Participant {
	return eventdomain.Participant{
		ID:                p.ID,
		Scope:             p.Scope,
		Name:              p.Name,
		Status:            p.Status,
		EliminatedInRound: p.EliminatedInRound,
	}
}
