package store

import (
	"context"
	"errors"
	"time"

	"github.com/interviewcoach/backend/internal/domain/interview"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrAlreadyAnswered is returned by SaveAnswer when the conditional update
	// finds the turn already answered.
	ErrAlreadyAnswered = errors.New("turn already answered")

	// ErrNotAnswered is returned by SaveEvaluation for a turn with no answer.
	ErrNotAnswered = errors.New("turn has no answer")

	// ErrConflict is a unique-index violation: a second turn for the same
	// index, a second evaluation for the same turn, or closing a closed session.
	ErrConflict = errors.New("conflicting write")
)

// Store is the persistent record store for sessions, turns and evaluations.
// It is the only source of truth; the orchestrator keeps nothing in memory
// between calls.
type Store interface {
	// CreateSession persists a new session together with its first turn.
	CreateSession(ctx context.Context, s *interview.Session, first *interview.Turn) error
	GetSession(ctx context.Context, id string) (*interview.Session, error)
	ListSessions(ctx context.Context, userID string) ([]SessionSummary, error)
	CompleteSession(ctx context.Context, id string, at time.Time) error

	AddTurn(ctx context.Context, t *interview.Turn) error
	// ListTurns returns all turns of a session in index order, evaluations
	// attached.
	ListTurns(ctx context.Context, sessionID string) ([]interview.Turn, error)
	// LatestTurn returns the highest-index turn or ErrNotFound.
	LatestTurn(ctx context.Context, sessionID string) (*interview.Turn, error)
	SaveAnswer(ctx context.Context, turnID, answer string, at time.Time) error

	SaveEvaluation(ctx context.Context, e *interview.Evaluation) error
}

// SessionSummary is a list row: the session plus progress counters.
type SessionSummary struct {
	Session       interview.Session
	AnsweredCount int
	AverageScore  *float64 // nil until at least one evaluation exists
}
