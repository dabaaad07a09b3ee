package undodomain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/google/uuid"
)

// Kind says how an entry is reversed.
type Kind string

const (
	// KindLocal entries roll back in-memory state; no confirmation, no network call.
	KindLocal Kind = "local"
	// KindSaved entries dispatch a compensating command to the backend after confirmation.
	KindSaved Kind = "saved"
)

// LocalRollback is the inspectable form of an in-memory rollback: the prior value and the
// name of the setter that knows how to write it back.
type LocalRollback struct {
	Setter string          `json:"setter"`
	Prior  json.RawMessage `json:"prior"`
}

// Entry is the single pending undo action held for a scope.
type Entry struct {
	ID        uuid.UUID
	Scope     sharedtypes.Scope
	Label     string
	CreatedAt time.Time
	Kind      Kind
	// Route is the screen that produced the entry.
	Route   string
	Local   *LocalRollback
	Command Command
}

// NewLocal builds a local entry.
func NewLocal(label, setter string, prior json.RawMessage) Entry {
	return Entry{
		Kind:  KindLocal,
		Label: label,
		Local: &LocalRollback{Setter: setter, Prior: prior},
	}
}

// NewSaved builds a saved entry around cmd.
func NewSaved(label string, cmd Command) Entry {
	return Entry{
		Kind:    KindSaved,
		Label:   label,
		Command: cmd,
	}
}

// Validate checks that the entry carries what its kind needs.
func (e Entry) Validate() error {
	switch e.Kind {
	case KindLocal:
		if e.Local == nil || e.Local.Setter == "" {
			return errors.New("local entry needs a setter")
		}
	case KindSaved:
		if e.Command == nil {
			return errors.New("saved entry needs a command")
		}
	default:
		return fmt.Errorf("unknown entry kind %q", e.Kind)
	}
	return nil
}

type entryWire struct {
	ID        uuid.UUID         `json:"id"`
	Scope     sharedtypes.Scope `json:"scope"`
	Label     string            `json:"label"`
	CreatedAt time.Time         `json:"created_at"`
	Kind      Kind              `json:"kind"`
	Route     string            `json:"route,omitempty"`
	Local     *LocalRollback    `json:"local,omitempty"`
	Command   json.RawMessage   `json:"command,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	w := entryWire{
		ID:        e.ID,
		Scope:     e.Scope,
		Label:     e.Label,
		CreatedAt: e.CreatedAt,
		Kind:      e.Kind,
		Route:     e.Route,
		Local:     e.Local,
	}
	if e.Command != nil {
		raw, err := MarshalCommand(e.Command)
		if err != nil {
			return nil, err
		}
		w.Command = raw
	}
	return json.Marshal(w)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var w entryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Entry{
		ID:        w.ID,
		Scope:     w.Scope,
		Label:     w.Label,
		CreatedAt: w.CreatedAt,
		Kind:      w.Kind,
		Route:     w.Route,
		Local:     w.Local,
	}
	if len(w.Command) > 0 && string(w.Command) != "null" {
		cmd, err := UnmarshalCommand(w.Command)
		if err != nil {
			return err
		}
		e.Command = cmd
	}
	return nil
}
