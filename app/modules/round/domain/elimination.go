package rounddomain

import (
	"fmt"
	"math"
)

// EliminationType selects how a shortlist decides who continues.
type EliminationType string

const (
	// EliminateTopK keeps the Value highest-ranked active entries.
	EliminateTopK EliminationType = "top_k"
	// EliminateMinScore drops every entry whose cumulative score is below Value.
	EliminateMinScore EliminationType = "min_score"
)

// EliminationPolicy is the shortlist request the backend evaluates.
type EliminationPolicy struct {
	Type            EliminationType `json:"elimination_type"`
	Value           float64         `json:"elimination_value"`
	EliminateAbsent bool            `json:"eliminate_absent"`
}

// Validate checks the policy before it is sent anywhere.
func (p EliminationPolicy) Validate() error {
	switch p.Type {
	case EliminateTopK:
		if p.Value < 0 || p.Value > math.MaxInt32 || p.Value != math.Trunc(p.Value) {
			return fmt.Errorf("%w: top_k needs a whole number between 0 and %d, got %v", ErrInvalidPolicy, math.MaxInt32, p.Value)
		}
	case EliminateMinScore:
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("%w: min_score must be finite", ErrInvalidPolicy)
		}
	default:
		return fmt.Errorf("%w: unknown elimination type %q", ErrInvalidPolicy, p.Type)
	}
	return nil
}
