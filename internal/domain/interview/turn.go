package interview

import (
	"time"

	"github.com/interviewcoach/backend/internal/id"
)

const (
	MinScore = 1
	MaxScore = 5

	// DefaultScore and DefaultFeedback are recorded when the evaluator reply
	// cannot be parsed or the generation service is unavailable.
	DefaultScore    = 3
	DefaultFeedback = "Feedback unavailable."
)

// Turn is one question/answer pair, addressed by a 1-based index that is
// unique within its session.
type Turn struct {
	ID         string
	SessionID  string
	Index      int
	Question   string
	Answer     *string
	AnsweredAt *time.Time
	Evaluation *Evaluation
	CreatedAt  time.Time
}

// NewTurn returns an open turn for the given round.
func NewTurn(sessionID string, index int, question string, now time.Time) *Turn {
	return &Turn{
		ID:        id.GenerateID(),
		SessionID: sessionID,
		Index:     index,
		Question:  question,
		CreatedAt: now.UTC(),
	}
}

func (t *Turn) IsAnswered() bool {
	return t.Answer != nil
}

func (t *Turn) IsEvaluated() bool {
	return t.Evaluation != nil
}

// AnswerText returns the answer or "" for an open turn.
func (t *Turn) AnswerText() string {
	if t.Answer == nil {
		return ""
	}
	return *t.Answer
}

// Evaluation is the normalized score and feedback for an answered turn.
type Evaluation struct {
	ID        string
	TurnID    string
	Score     int
	Feedback  string
	CreatedAt time.Time
}

func NewEvaluation(turnID string, score int, feedback string, now time.Time) *Evaluation {
	return &Evaluation{
		ID:        id.GenerateID(),
		TurnID:    turnID,
		Score:     score,
		Feedback:  feedback,
		CreatedAt: now.UTC(),
	}
}

// ValidScore reports whether n is inside [MinScore, MaxScore].
func ValidScore(n int) bool {
	return n >= MinScore && n <= MaxScore
}
