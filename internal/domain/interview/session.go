package interview

import (
	"fmt"
	"time"

	"github.com/interviewcoach/backend/internal/id"
)

// Mode is the interview style. It selects the topic table, the question
// register and the grading rubric.
type Mode string

const (
	ModeTechnical  Mode = "technical"
	ModeBehavioral Mode = "behavioral"
)

// Modes lists the recognized modes in a stable order.
var Modes = []Mode{ModeTechnical, ModeBehavioral}

func (m Mode) IsValid() bool {
	switch m {
	case ModeTechnical, ModeBehavioral:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	return string(m)
}

// Status is the session lifecycle state. in_progress is initial, done is
// terminal.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Session is one mock interview owned by a single user.
type Session struct {
	ID            string
	UserID        string
	Mode          Mode
	QuestionCount int
	Status        Status
	CreatedAt     time.Time
	CompletedAt   *time.Time // nil until the session is done
}

// New validates the inputs and returns an in_progress session. Nothing is
// persisted here.
func New(userID string, mode Mode, questionCount int, now time.Time) (*Session, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if !mode.IsValid() {
		return nil, &ValidationError{
			Field:  "mode",
			Reason: fmt.Sprintf("%q is not one of technical, behavioral", mode),
		}
	}
	if questionCount < 1 {
		return nil, &ValidationError{Field: "num_questions", Reason: "must be at least 1"}
	}

	return &Session{
		ID:            id.GenerateID(),
		UserID:        userID,
		Mode:          mode,
		QuestionCount: questionCount,
		Status:        StatusInProgress,
		CreatedAt:     now.UTC(),
	}, nil
}

func (s *Session) IsDone() bool {
	return s.Status == StatusDone
}

// CheckOwner returns ErrNotOwner when userID does not own the session.
func (s *Session) CheckOwner(userID string) error {
	if s.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

// CheckOpen returns ErrSessionDone for a closed session.
func (s *Session) CheckOpen() error {
	if s.IsDone() {
		return ErrSessionDone
	}
	return nil
}
