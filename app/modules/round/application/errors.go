package roundservice

import "errors"

var (
	ErrRoundFrozen  = errors.New("round is frozen")
	ErrNoNeighbor   = errors.New("no neighbouring round in that direction")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoDraft      = errors.New("no draft for round")
)
