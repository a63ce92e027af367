package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionDone is returned for any mutating operation on a closed session.
	ErrSessionDone = errors.New("session is already done")

	// ErrNoOpenTurn means the session has no turn waiting for an answer.
	ErrNoOpenTurn = errors.New("session has no open turn")

	// ErrDuplicateSubmission means the current turn already has an answer,
	// usually a client retry.
	ErrDuplicateSubmission = errors.New("turn already answered")

	ErrNotOwner = errors.New("session belongs to another user")
)

// ValidationError reports bad input. It is always returned before any state
// change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
