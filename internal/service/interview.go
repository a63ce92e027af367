// internal/service/interview.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/llm"
	"github.com/interviewcoach/backend/internal/prompts"
	"github.com/interviewcoach/backend/internal/speech"
	"github.com/interviewcoach/backend/internal/store"
)

// Options tunes the orchestrator. Zero values pick the defaults.
type Options struct {
	DefaultQuestions  int
	MaxQuestions      int
	GenerationTimeout time.Duration
	Now               func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultQuestions <= 0 {
		o.DefaultQuestions = 5
	}
	if o.MaxQuestions <= 0 {
		o.MaxQuestions = 20
	}
	if o.GenerationTimeout <= 0 {
		o.GenerationTimeout = 60 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// InterviewService runs interview sessions. It holds no per-session state:
// every call rebuilds what it needs from the store.
type InterviewService struct {
	store     store.Store
	questions *QuestionGenerator
	evaluator *Evaluator
	coach     *Coach
	stt       speech.Transcriber
	logger    *slog.Logger
	opts      Options
}

// NewInterviewService wires the orchestrator. stt may be nil, in which case
// audio answers fail with a TranscriptionError.
func NewInterviewService(
	s store.Store,
	gen llm.Generator,
	stt speech.Transcriber,
	table *prompts.Table,
	logger *slog.Logger,
	opts Options,
) *InterviewService {
	opts = opts.withDefaults()
	return &InterviewService{
		store:     s,
		questions: NewQuestionGenerator(gen, table, opts.GenerationTimeout),
		evaluator: NewEvaluator(gen, table, opts.GenerationTimeout),
		coach:     NewCoach(gen, table, opts.GenerationTimeout),
		stt:       stt,
		logger:    logger,
		opts:      opts,
	}
}

// StartResult is returned by Start.
type StartResult struct {
	Session    *interview.Session
	Question   string
	Transcript []string
}

// RoundResult is returned by SubmitAnswer and Resume. Verdict is nil when
// the call graded nothing (resuming an open turn). NextQuestion is nil once
// the session is done.
type RoundResult struct {
	SessionID    string
	TurnIndex    int
	Verdict      *Verdict
	Done         bool
	NextQuestion *string
	Transcript   []string
}

// SessionView is a session with all of its turns.
type SessionView struct {
	Session    *interview.Session
	Turns      []interview.Turn
	Transcript []string
}

// EvaluationView is one graded turn in a summary.
type EvaluationView struct {
	TurnIndex int
	Score     int
	Feedback  string
}

// Summary is the end-of-session evidence plus the coaching report.
type Summary struct {
	Session        *interview.Session
	Questions      []string
	Answers        []string
	Evaluations    []EvaluationView
	CoachingReport string
	CoachingError  string
}

// Start validates the request, generates the first question and persists
// the session together with turn 1. questionCount nil means the configured
// default. Nothing is written if question generation fails.
func (s *InterviewService) Start(ctx context.Context, userID string, mode interview.Mode, questionCount *int) (*StartResult, error) {
	count := s.opts.DefaultQuestions
	if questionCount != nil {
		count = *questionCount
	}
	if count > s.opts.MaxQuestions {
		return nil, &interview.ValidationError{
			Field:  "num_questions",
			Reason: fmt.Sprintf("must be at most %d", s.opts.MaxQuestions),
		}
	}

	now := s.opts.Now()
	session, err := interview.New(userID, mode, count, now)
	if err != nil {
		return nil, err
	}

	question, err := s.questions.Next(ctx, mode, nil, 1)
	if err != nil {
		s.logger.Warn("first question generation failed",
			"user_id", userID,
			"mode", mode,
			"error", err,
		)
		return nil, err
	}

	first := interview.NewTurn(session.ID, 1, question, now)
	if err := s.store.CreateSession(ctx, session, first); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("session started",
		"session_id", session.ID,
		"user_id", userID,
		"mode", mode,
		"num_questions", count,
	)

	return &StartResult{
		Session:    session,
		Question:   question,
		Transcript: interview.Transcript([]interview.Turn{*first}),
	}, nil
}

// SubmitAnswer attaches answer to the open turn, grades it and runs the
// round controller.
func (s *InterviewService) SubmitAnswer(ctx context.Context, userID, sessionID, answer string) (*RoundResult, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, &interview.ValidationError{Field: "answer", Reason: "is required"}
	}

	session, open, err := s.openTurn(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveAnswer(ctx, open.ID, answer, s.opts.Now()); err != nil {
		if errors.Is(err, store.ErrAlreadyAnswered) {
			return nil, interview.ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("save answer: %w", err)
	}

	st, err := s.loadRound(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.advance(ctx, st)
}

// SubmitAudioAnswer transcribes audio and submits the transcript. The
// session checks run first so a closed session costs no transcription.
func (s *InterviewService) SubmitAudioAnswer(ctx context.Context, userID, sessionID string, audio speech.Audio) (*RoundResult, error) {
	if _, _, err := s.openTurn(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	if s.stt == nil {
		return nil, &speech.TranscriptionError{Reason: "speech-to-text is not configured"}
	}

	text, err := s.stt.Transcribe(ctx, audio)
	if err != nil {
		s.logger.Warn("transcription failed", "session_id", sessionID, "error", err)
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, &speech.TranscriptionError{Reason: "empty transcript"}
	}
	return s.SubmitAnswer(ctx, userID, sessionID, text)
}

// Resume finishes a round that was interrupted after the answer was saved.
// An open turn is returned unchanged.
func (s *InterviewService) Resume(ctx context.Context, userID, sessionID string) (*RoundResult, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.CheckOpen(); err != nil {
		return nil, err
	}

	st, err := s.loadRound(ctx, session)
	if err != nil {
		return nil, err
	}

	if st.current == nil {
		return s.nextTurn(ctx, st, nil)
	}
	if !st.current.IsAnswered() {
		q := st.current.Question
		return &RoundResult{
			SessionID:    session.ID,
			TurnIndex:    st.current.Index,
			NextQuestion: &q,
			Transcript:   interview.Transcript(st.turns),
		}, nil
	}
	return s.advance(ctx, st)
}

// GetSession returns the session with its turns.
func (s *InterviewService) GetSession(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	turns, err := s.store.ListTurns(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	return &SessionView{Session: session, Turns: turns, Transcript: interview.Transcript(turns)}, nil
}

// ListSessions returns the user's sessions, newest first.
func (s *InterviewService) ListSessions(ctx context.Context, userID string) ([]store.SessionSummary, error) {
	if userID == "" {
		return nil, &interview.ValidationError{Field: "user_id", Reason: "is required"}
	}
	return s.store.ListSessions(ctx, userID)
}

// GetSummary returns the evidence of a session. The coaching report is only
// generated once the session is done; a coaching failure is reported in
// CoachingError and does not fail the call.
//
// The report is not stored: every call on a done session makes one
// generation request, so callers should keep the result rather than poll.
func (s *InterviewService) GetSummary(ctx context.Context, userID, sessionID string) (*Summary, error) {
	view, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Session:     view.Session,
		Questions:   interview.Questions(view.Turns),
		Answers:     []string{},
		Evaluations: []EvaluationView{},
	}
	for _, t := range view.Turns {
		if t.IsAnswered() {
			summary.Answers = append(summary.Answers, t.AnswerText())
		}
		if t.IsEvaluated() {
			summary.Evaluations = append(summary.Evaluations, EvaluationView{
				TurnIndex: t.Index,
				Score:     t.Evaluation.Score,
				Feedback:  t.Evaluation.Feedback,
			})
		}
	}

	if !view.Session.IsDone() {
		return summary, nil
	}

	report, err := s.coach.Report(ctx, view.Session.Mode, view.Turns)
	if err != nil {
		s.logger.Warn("coaching report failed", "session_id", sessionID, "error", err)
		summary.CoachingError = err.Error()
		return summary, nil
	}
	summary.CoachingReport = report
	return summary, nil
}

// ownedSession loads a session and checks that userID owns it.
func (s *InterviewService) ownedSession(ctx context.Context, userID, sessionID string) (*interview.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.CheckOwner(userID); err != nil {
		return nil, err
	}
	return session, nil
}

// openTurn runs the intake guards: the session is the caller's and still
// in progress, and its latest turn has no answer yet.
func (s *InterviewService) openTurn(ctx context.Context, userID, sessionID string) (*interview.Session, *interview.Turn, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := session.CheckOpen(); err != nil {
		return nil, nil, err
	}

	turn, err := s.store.LatestTurn(ctx, session.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, interview.ErrNoOpenTurn
	}
	if err != nil {
		return nil, nil, fmt.Errorf("latest turn: %w", err)
	}
	if turn.IsAnswered() {
		return nil, nil, interview.ErrDuplicateSubmission
	}
	return session, turn, nil
}
