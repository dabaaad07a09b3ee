package rounddomain

import sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"

// AttendanceMark records whether a participant showed up for a round. A nil Present means
// unmarked.
type AttendanceMark struct {
	ParticipantID sharedtypes.ParticipantID `json:"participant_id"`
	Present       *bool                     `json:"present"`
}

// Score is one participant's score for a round criterion. A nil Value means no score.
type Score struct {
	ParticipantID sharedtypes.ParticipantID `json:"participant_id"`
	Criterion     string                    `json:"criterion"`
	Value         *float64                  `json:"value"`
}

// Panel is a judging panel defined for a round.
type Panel struct {
	ID     sharedtypes.PanelID `json:"id"`
	Name   string              `json:"name"`
	Judges []string            `json:"judges"`
}

// PanelAssignment places a participant on a panel. A nil PanelID means unassigned.
type PanelAssignment struct {
	ParticipantID sharedtypes.ParticipantID `json:"participant_id"`
	PanelID       *sharedtypes.PanelID      `json:"panel_id"`
}
