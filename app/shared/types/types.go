// Package sharedtypes holds identifiers shared across console modules.
package sharedtypes

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope identifies the managed event that rounds, participants and undo entries belong to.
type Scope string

func (s Scope) String() string { return string(s) }

// Valid reports whether the scope is usable as a key.
func (s Scope) Valid() bool { return strings.TrimSpace(string(s)) != "" }

// RoundID identifies a round. Zero is never a valid round.
type RoundID int64

// ParticipantID identifies an entrant of an event.
type ParticipantID int64

// PanelID identifies a judging panel within a round.
type PanelID int64

// ParseRoundID parses a positive integral round identifier.
func ParseRoundID(raw string) (RoundID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid round id %q: %w", raw, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid round id %q: must be positive", raw)
	}
	return RoundID(id), nil
}
