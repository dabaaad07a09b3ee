package rounddomain

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalTransition is returned when an event is not allowed from the round's current state.
	ErrIllegalTransition = errors.New("illegal round transition")
	// ErrInvalidPolicy is returned for a malformed elimination policy.
	ErrInvalidPolicy = errors.New("invalid elimination policy")
	// ErrRoundNotFound is returned when the backend has no round with the requested ID in the scope.
	ErrRoundNotFound = errors.New("round not found")
)

// Event is an operator action against a round's lifecycle.
type Event string

const (
	EventPublish   Event = "publish"
	EventUnpublish Event = "unpublish"
	EventActivate  Event = "activate"
	EventFreeze    Event = "freeze"
	EventShortlist Event = "shortlist"
	EventReveal    Event = "reveal"
	EventUnreveal  Event = "unreveal"
	EventEdit      Event = "edit"
	EventDelete    Event = "delete"
	EventReorder   Event = "reorder"
)

// stateEdges holds the events that move a round between lifecycle states.
var stateEdges = map[Event]struct{ from, to LifecycleState }{
	EventPublish:   {StateDraft, StatePublished},
	EventUnpublish: {StatePublished, StateDraft},
	EventActivate:  {StatePublished, StateActive},
	EventReveal:    {StateCompleted, StateReveal},
	EventUnreveal:  {StateReveal, StateCompleted},
}

// IsStateEvent reports whether ev is a plain state-to-state edge.
func IsStateEvent(ev Event) bool {
	_, ok := stateEdges[ev]
	return ok
}

// Check validates ev against r and returns the lifecycle state the round will be in afterwards.
func Check(r Round, ev Event) (LifecycleState, error) {
	if edge, ok := stateEdges[ev]; ok {
		if r.State != edge.from {
			return r.State, illegal(r, ev, "requires state %s", edge.from)
		}
		return edge.to, nil
	}

	switch ev {
	case EventFreeze:
		if r.State != StateActive {
			return r.State, illegal(r, ev, "requires state %s", StateActive)
		}
		if r.Frozen {
			return r.State, illegal(r, ev, "round is already frozen")
		}
		return r.State, nil
	case EventShortlist:
		if !r.Frozen {
			return r.State, illegal(r, ev, "round must be frozen")
		}
		if r.State == StateCompleted || r.State == StateReveal {
			return r.State, illegal(r, ev, "round is already %s", r.State)
		}
		return StateCompleted, nil
	case EventEdit:
		if r.Frozen {
			return r.State, illegal(r, ev, "round is frozen")
		}
		return r.State, nil
	case EventDelete:
		if r.State != StateDraft {
			return r.State, illegal(r, ev, "only draft rounds can be deleted")
		}
		if r.Frozen {
			return r.State, illegal(r, ev, "round is frozen")
		}
		return r.State, nil
	case EventReorder:
		return r.State, nil
	}
	return r.State, fmt.Errorf("%w: unknown event %q", ErrIllegalTransition, ev)
}

func illegal(r Round, ev Event, format string, args ...any) error {
	return fmt.Errorf("%w: %s on round %d (%s, frozen=%t): %s",
		ErrIllegalTransition, ev, r.ID, r.State, r.Frozen, fmt.Sprintf(format, args...))
}
