package eventservice

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrDuplicateParticipant = errors.New("participant listed twice")
)
