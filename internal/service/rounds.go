package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/store"
)

// roundState is the per-request working set, rebuilt from the store on
// every call and dropped when the call returns.
type roundState struct {
	session *interview.Session
	turns   []interview.Turn
	current *interview.Turn // highest-index turn, nil for a session with no turns
}

// turn returns the turn with the given id, or nil.
func (st *roundState) turn(id string) *interview.Turn {
	for i := range st.turns {
		if st.turns[i].ID == id {
			return &st.turns[i]
		}
	}
	return nil
}

func (s *InterviewService) loadRound(ctx context.Context, session *interview.Session) (*roundState, error) {
	st := &roundState{session: session}
	if err := s.reload(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *InterviewService) reload(ctx context.Context, st *roundState) error {
	turns, err := s.store.ListTurns(ctx, st.session.ID)
	if err != nil {
		return fmt.Errorf("list turns: %w", err)
	}
	st.turns = turns
	st.current = nil
	if len(turns) > 0 {
		st.current = &st.turns[len(turns)-1]
	}
	return nil
}

// advance grades the current answered turn if needed, then either opens the
// next turn or closes the session. It is the only place a session is closed.
func (s *InterviewService) advance(ctx context.Context, st *roundState) (*RoundResult, error) {
	graded := st.current.Index
	verdict, err := s.grade(ctx, st)
	if err != nil {
		return nil, err
	}

	switch {
	case st.current.Index > graded:
		// A concurrent call graded this turn and already opened the next one.
		return s.openResult(st, graded, verdict), nil
	case graded >= st.session.QuestionCount:
		return s.finish(ctx, st, verdict)
	default:
		return s.nextTurn(ctx, st, verdict)
	}
}

// grade records the evaluation of the current turn. A turn that already has
// one keeps it.
func (s *InterviewService) grade(ctx context.Context, st *roundState) (*Verdict, error) {
	cur := st.current
	if cur.IsEvaluated() {
		return storedVerdict(cur), nil
	}

	verdict := s.evaluator.Evaluate(ctx, st.session.Mode, cur.Question, cur.AnswerText())
	if verdict.Degraded {
		s.logger.Warn("evaluation degraded to default",
			"session_id", st.session.ID,
			"turn_index", cur.Index,
			"error", verdict.Cause,
		)
	}

	eval := interview.NewEvaluation(cur.ID, verdict.Score, verdict.Feedback, s.opts.Now())
	err := s.store.SaveEvaluation(ctx, eval)
	switch {
	case err == nil:
		cur.Evaluation = eval
		return &verdict, nil
	case errors.Is(err, store.ErrConflict):
		// Graded by a concurrent call; the stored evaluation wins. That call
		// may also have opened the next turn, so look the turn up by id.
		turnID := cur.ID
		if err := s.reload(ctx, st); err != nil {
			return nil, err
		}
		stored := st.turn(turnID)
		if stored == nil || !stored.IsEvaluated() {
			return nil, fmt.Errorf("save evaluation: %w", store.ErrConflict)
		}
		s.logger.Info("evaluation already recorded by a concurrent request",
			"session_id", st.session.ID,
			"turn_index", stored.Index,
		)
		return storedVerdict(stored), nil
	default:
		s.logger.Error("failed to save evaluation",
			"session_id", st.session.ID,
			"turn_index", cur.Index,
			"error", err,
		)
		return nil, fmt.Errorf("save evaluation: %w", err)
	}
}

func storedVerdict(t *interview.Turn) *Verdict {
	return &Verdict{Score: t.Evaluation.Score, Feedback: t.Evaluation.Feedback}
}

// nextTurn generates and persists the next question. A generation failure
// aborts the round; the graded answer stays stored and Resume retries.
func (s *InterviewService) nextTurn(ctx context.Context, st *roundState, verdict *Verdict) (*RoundResult, error) {
	next, graded := 1, 0
	if st.current != nil {
		next = st.current.Index + 1
		graded = st.current.Index
	}

	question, err := s.questions.Next(ctx, st.session.Mode, interview.Questions(st.turns), next)
	if err != nil {
		s.logger.Warn("question generation failed",
			"session_id", st.session.ID,
			"turn_index", next,
			"error", err,
		)
		return nil, err
	}

	turn := interview.NewTurn(st.session.ID, next, question, s.opts.Now())
	if err := s.store.AddTurn(ctx, turn); err != nil {
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("add turn: %w", err)
		}
		// A concurrent call opened this round first; return its turn.
		if err := s.reload(ctx, st); err != nil {
			return nil, err
		}
		if st.current == nil || st.current.Index != next {
			return nil, fmt.Errorf("add turn %d: %w", next, err)
		}
	} else {
		st.turns = append(st.turns, *turn)
		st.current = &st.turns[len(st.turns)-1]
	}
	return s.openResult(st, graded, verdict), nil
}

// openResult reports the open turn of st as the next question.
func (s *InterviewService) openResult(st *roundState, graded int, verdict *Verdict) *RoundResult {
	q := st.current.Question
	return &RoundResult{
		SessionID:    st.session.ID,
		TurnIndex:    graded,
		Verdict:      verdict,
		NextQuestion: &q,
		Transcript:   interview.Transcript(st.turns),
	}
}

func (s *InterviewService) finish(ctx context.Context, st *roundState, verdict *Verdict) (*RoundResult, error) {
	now := s.opts.Now().UTC()
	if err := s.store.CompleteSession(ctx, st.session.ID, now); err != nil && !errors.Is(err, store.ErrConflict) {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	st.session.Status = interview.StatusDone
	st.session.CompletedAt = &now

	s.logger.Info("session completed",
		"session_id", st.session.ID,
		"turns", len(st.turns),
	)

	return &RoundResult{
		SessionID:  st.session.ID,
		TurnIndex:  st.current.Index,
		Verdict:    verdict,
		Done:       true,
		Transcript: interview.Transcript(st.turns),
	}, nil
}
