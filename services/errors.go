// services/errors.go
package services

import "errors"

var (
	// ErrNotFound means the referenced user, group, competition or post does
	// not exist. Surfaced to the caller, no retry.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation targets a record in the wrong
	// state, e.g. joining a completed competition.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotMember means the user is not a member of the group.
	ErrNotMember = errors.New("not a group member")

	// ErrAlreadyParticipant means the user already joined the competition.
	ErrAlreadyParticipant = errors.New("already a participant")

	// ErrNotParticipant means the user has not joined the competition.
	ErrNotParticipant = errors.New("not a participant")
)
