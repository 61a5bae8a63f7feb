package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyPatch        = errors.New("task patch has no fields")
	ErrInvalidTitle      = errors.New("task title must not be empty")

	// Subject errors
	ErrUserNotFound   = errors.New("user not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrUnknownSubject = errors.New("unknown subject kind")

	// Validation errors
	ErrInvalidStatus       = errors.New("invalid task status")
	ErrInvalidReviewStatus = errors.New("review status must be ACCEPTED, TERMINATED or FAILED")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidPage         = errors.New("invalid page request")
)

// IsNotFound reports whether err signals a missing task, user or team.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTeamNotFound)
}
