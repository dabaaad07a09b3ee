package rounddomain

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

// LifecycleState is a round's publication/progress phase.
type LifecycleState string

const (
	StateDraft     LifecycleState = "draft"
	StatePublished LifecycleState = "published"
	StateActive    LifecycleState = "active"
	StateCompleted LifecycleState = "completed"
	StateReveal    LifecycleState = "reveal"
)

// Valid reports whether s is one of the five lifecycle states.
func (s LifecycleState) Valid() bool {
	switch s {
	case StateDraft, StatePublished, StateActive, StateCompleted, StateReveal:
		return true
	}
	return false
}

// Metadata is free-form round content the lifecycle never inspects.
type Metadata struct {
	PosterRef    string   `json:"poster_ref,omitempty"`
	ExternalLink string   `json:"external_link,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// Round is one stage of an event.
type Round struct {
	ID          sharedtypes.RoundID `json:"id"`
	Scope       sharedtypes.Scope   `json:"scope"`
	Ordinal     int                 `json:"round_no"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Metadata    Metadata            `json:"metadata"`
	State       LifecycleState      `json:"state"`
	Frozen      bool                `json:"frozen"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Fields returns the editable content of the round as a full patch.
func (r Round) Fields() Patch {
	name, desc, meta := r.Name, r.Description, r.Metadata
	return Patch{Name: &name, Description: &desc, Metadata: &meta}
}

// NewRound is the content for a round about to be created.
type NewRound struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Metadata    Metadata `json:"metadata"`
}

// Patch overwrites the non-nil fields of a round.
type Patch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Metadata    *Metadata `json:"metadata,omitempty"`
	Ordinal     *int      `json:"round_no,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Metadata == nil && p.Ordinal == nil
}

// ContentOnly reports whether the patch touches only content fields.
func (p Patch) ContentOnly() bool {
	return p.Ordinal == nil && !p.Empty()
}

// Apply returns r with the patch applied.
func (p Patch) Apply(r Round) Round {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Metadata != nil {
		r.Metadata = *p.Metadata
	}
	if p.Ordinal != nil {
		r.Ordinal = *p.Ordinal
	}
	return r
}

// Update is a transition request sent to the scoring backend. Nil fields stay unchanged.
type Update struct {
	State       *LifecycleState    `json:"state,omitempty"`
	Frozen      *bool              `json:"frozen,omitempty"`
	Elimination *EliminationPolicy `json:"elimination,omitempty"`
	Patch       Patch              `json:"patch"`
}

// StateUpdate builds an update that only sets the lifecycle state.
func StateUpdate(s LifecycleState) Update {
	return Update{State: &s}
}

// FrozenUpdate builds an update that only sets the freeze flag.
func FrozenUpdate(frozen bool) Update {
	return Update{Frozen: &frozen}
}
