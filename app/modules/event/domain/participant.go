package eventdomain

import sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"

// ParticipantStatus is an entrant's standing in the event.
type ParticipantStatus string

const (
	StatusActive     ParticipantStatus = "active"
	StatusEliminated ParticipantStatus = "eliminated"
	StatusWithdrawn  ParticipantStatus = "withdrawn"
)

// Valid reports whether s is a known status.
func (s ParticipantStatus) Valid() bool {
	switch s {
	case StatusActive, StatusEliminated, StatusWithdrawn:
		return true
	}
	return false
}

// Participant is an entrant in a managed event.
type Participant struct {
	ID                sharedtypes.ParticipantID `json:"id"`
	Scope             sharedtypes.Scope         `json:"scope"`
	Name              string                    `json:"name"`
	Status            ParticipantStatus         `json:"status"`
	EliminatedInRound *sharedtypes.RoundID      `json:"eliminated_in_round,omitempty"`
}

// StatusChange sets one participant's status. EliminatedInRound only applies to the
// eliminated status; when nil the participant keeps the round already recorded.
type StatusChange struct {
	ParticipantID     sharedtypes.ParticipantID `json:"participant_id"`
	Status            ParticipantStatus         `json:"status"`
	EliminatedInRound *sharedtypes.RoundID      `json:"eliminated_in_round,omitempty"`
}

// Flags are the event's boolean switches (registration_open, leaderboard_public, ...).
type Flags map[string]bool

// Clone returns an independent copy.
func (f Flags) Clone() Flags {
	out := make(Flags, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
