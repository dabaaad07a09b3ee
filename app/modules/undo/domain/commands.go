package undodomain

import (
	"encoding/json"
	"errors"
	"fmt"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

// CommandType is the discriminant of a compensating command.
type CommandType string

const (
	CmdAttendanceRestore            CommandType = "attendance_restore"
	CmdScoresRestore                CommandType = "scores_restore"
	CmdPanelAssignmentsRestore      CommandType = "panel_assignments_restore"
	CmdPanelDefinitionsRestore      CommandType = "panel_definitions_restore"
	CmdRoundPatchRestore            CommandType = "round_patch_restore"
	CmdRoundStateRestore            CommandType = "round_state_restore"
	CmdRoundFreezeRestore           CommandType = "round_freeze_restore"
	CmdEventFlagsRestore            CommandType = "event_flags_restore"
	CmdParticipantStatusBulkRestore CommandType = "participant_status_bulk_restore"
	CmdRoundDeleteCreated           CommandType = "round_delete_created"
)

// Command describes one compensating backend operation. Payloads carry the full prior
// values of the target fields, so replaying a command is an overwrite, not a delta.
type Command interface {
	Type() CommandType
	// Valid reports whether the payload is structurally complete.
	Valid() bool
}

// AttendanceRestore re-marks each listed participant's presence.
type AttendanceRestore struct {
	RoundID sharedtypes.RoundID          `json:"round_id"`
	Marks   []rounddomain.AttendanceMark `json:"marks"`
}

func (AttendanceRestore) Type() CommandType { return CmdAttendanceRestore }

func (c AttendanceRestore) Valid() bool {
	if c.RoundID <= 0 || len(c.Marks) == 0 {
		return false
	}
	for _, m := range c.Marks {
		if m.ParticipantID <= 0 {
			return false
		}
	}
	return true
}

// ScoresRestore writes back prior score values.
type ScoresRestore struct {
	RoundID sharedtypes.RoundID `json:"round_id"`
	Scores  []rounddomain.Score `json:"scores"`
}

func (ScoresRestore) Type() CommandType { return CmdScoresRestore }

func (c ScoresRestore) Valid() bool {
	if c.RoundID <= 0 || len(c.Scores) == 0 {
		return false
	}
	for _, s := range c.Scores {
		if s.ParticipantID <= 0 || s.Criterion == "" {
			return false
		}
	}
	return true
}

// PanelAssignmentsRestore puts participants back on their prior panels.
type PanelAssignmentsRestore struct {
	RoundID     sharedtypes.RoundID           `json:"round_id"`
	Assignments []rounddomain.PanelAssignment `json:"assignments"`
}

func (PanelAssignmentsRestore) Type() CommandType { return CmdPanelAssignmentsRestore }

func (c PanelAssignmentsRestore) Valid() bool {
	if c.RoundID <= 0 || len(c.Assignments) == 0 {
		return false
	}
	for _, a := range c.Assignments {
		if a.ParticipantID <= 0 || (a.PanelID != nil && *a.PanelID <= 0) {
			return false
		}
	}
	return true
}

// PanelDefinitionsRestore replaces a round's panels with the prior set. An empty set is valid.
type PanelDefinitionsRestore struct {
	RoundID sharedtypes.RoundID `json:"round_id"`
	Panels  []rounddomain.Panel `json:"panels"`
}

func (PanelDefinitionsRestore) Type() CommandType { return CmdPanelDefinitionsRestore }

func (c PanelDefinitionsRestore) Valid() bool {
	if c.RoundID <= 0 || c.Panels == nil {
		return false
	}
	for _, p := range c.Panels {
		if p.ID <= 0 {
			return false
		}
	}
	return true
}

// RoundPatchRestore writes back prior round fields.
type RoundPatchRestore struct {
	RoundID sharedtypes.RoundID `json:"round_id"`
	Patch   rounddomain.Patch   `json:"patch"`
}

func (RoundPatchRestore) Type() CommandType { return CmdRoundPatchRestore }

func (c RoundPatchRestore) Valid() bool {
	return c.RoundID > 0 && !c.Patch.Empty()
}

// RoundStateRestore stores the state the round was in before the transition being undone.
type RoundStateRestore struct {
	RoundID sharedtypes.RoundID        `json:"round_id"`
	State   rounddomain.LifecycleState `json:"state"`
}

func (RoundStateRestore) Type() CommandType { return CmdRoundStateRestore }

func (c RoundStateRestore) Valid() bool {
	return c.RoundID > 0 && c.State.Valid()
}

// RoundFreezeRestore sets the freeze flag back.
type RoundFreezeRestore struct {
	RoundID sharedtypes.RoundID `json:"round_id"`
	Frozen  bool                `json:"frozen"`
}

func (RoundFreezeRestore) Type() CommandType { return CmdRoundFreezeRestore }

func (c RoundFreezeRestore) Valid() bool { return c.RoundID > 0 }

// EventFlagsRestore overwrites the event's flags with the prior map.
type EventFlagsRestore struct {
	Flags eventdomain.Flags `json:"flags"`
}

func (EventFlagsRestore) Type() CommandType { return CmdEventFlagsRestore }

func (c EventFlagsRestore) Valid() bool { return c.Flags != nil }

// ParticipantStatusBulkRestore sets each listed participant back to its prior status.
type ParticipantStatusBulkRestore struct {
	Items []eventdomain.StatusChange `json:"items"`
}

func (ParticipantStatusBulkRestore) Type() CommandType { return CmdParticipantStatusBulkRestore }

func (c ParticipantStatusBulkRestore) Valid() bool {
	if len(c.Items) == 0 {
		return false
	}
	for _, it := range c.Items {
		if it.ParticipantID <= 0 || !it.Status.Valid() {
			return false
		}
		if it.EliminatedInRound != nil && *it.EliminatedInRound <= 0 {
			return false
		}
	}
	return true
}

// RoundDeleteCreated removes a round that the action being undone created.
type RoundDeleteCreated struct {
	RoundID sharedtypes.RoundID `json:"round_id"`
}

func (RoundDeleteCreated) Type() CommandType { return CmdRoundDeleteCreated }

func (c RoundDeleteCreated) Valid() bool { return c.RoundID > 0 }

// UnknownCommand keeps a decoded command whose type this build does not know.
// It is never valid and no handler exists for it.
type UnknownCommand struct {
	Kind CommandType
	Raw  json.RawMessage
}

func (c UnknownCommand) Type() CommandType { return c.Kind }

func (UnknownCommand) Valid() bool { return false }

var commandFactories = map[CommandType]func() Command{
	CmdAttendanceRestore:            func() Command { return &AttendanceRestore{} },
	CmdScoresRestore:                func() Command { return &ScoresRestore{} },
	CmdPanelAssignmentsRestore:      func() Command { return &PanelAssignmentsRestore{} },
	CmdPanelDefinitionsRestore:      func() Command { return &PanelDefinitionsRestore{} },
	CmdRoundPatchRestore:            func() Command { return &RoundPatchRestore{} },
	CmdRoundStateRestore:            func() Command { return &RoundStateRestore{} },
	CmdRoundFreezeRestore:           func() Command { return &RoundFreezeRestore{} },
	CmdEventFlagsRestore:            func() Command { return &EventFlagsRestore{} },
	CmdParticipantStatusBulkRestore: func() Command { return &ParticipantStatusBulkRestore{} },
	CmdRoundDeleteCreated:           func() Command { return &RoundDeleteCreated{} },
}

// KnownCommandTypes lists every command type this build can decode.
func KnownCommandTypes() []CommandType {
	out := make([]CommandType, 0, len(commandFactories))
	for t := range commandFactories {
		out = append(out, t)
	}
	return out
}

type commandEnvelope struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalCommand encodes c as {"type": ..., "payload": ...}.
func MarshalCommand(c Command) ([]byte, error) {
	if c == nil {
		return nil, errors.New("nil command")
	}
	if u, ok := c.(UnknownCommand); ok {
		return json.Marshal(commandEnvelope{Type: u.Kind, Payload: u.Raw})
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", c.Type(), err)
	}
	return json.Marshal(commandEnvelope{Type: c.Type(), Payload: payload})
}

// UnmarshalCommand decodes an envelope produced by MarshalCommand. Types this build does
// not know decode to UnknownCommand rather than failing, so dispatch can report them.
func UnmarshalCommand(data []byte) (Command, error) {
	var env commandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode command envelope: %w", err)
	}
	if env.Type == "" {
		return nil, errors.New("command envelope has no type")
	}
	factory, ok := commandFactories[env.Type]
	if !ok {
		return UnknownCommand{Kind: env.Type, Raw: env.Payload}, nil
	}
	ptr := factory()
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, ptr); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
	}
	return deref(ptr), nil
}

// deref turns the factory's pointer back into the value type handlers switch on.
func deref(c Command) Command {
	switch v := c.(type) {
	case *AttendanceRestore:
		return *v
	case *ScoresRestore:
		return *v
	case *PanelAssignmentsRestore:
		return *v
	case *PanelDefinitionsRestore:
		return *v
	case *RoundPatchRestore:
		return *v
	case *RoundStateRestore:
		return *v
	case *RoundFreezeRestore:
		return *v
	case *EventFlagsRestore:
		return *v
	case *ParticipantStatusBulkRestore:
		return *v
	case *RoundDeleteCreated:
		return *v
	}
	return c
}
