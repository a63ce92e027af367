package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/store"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSession(t *testing.T, s *store.SQLiteStore, userID string, count int) (*interview.Session, *interview.Turn) {
	t.Helper()
	session, err := interview.New(userID, interview.ModeTechnical, count, t0)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	first := interview.NewTurn(session.ID, 1, "What is a goroutine?", t0)
	if err := s.CreateSession(context.Background(), session, first); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session, first
}

func TestCreateSession_PersistsFirstTurn(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	session, first := seedSession(t, s, "user-1", 3)

	got, err := s.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Status != interview.StatusInProgress {
		t.Errorf("expected in_progress, got %s", got.Status)
	}
	if got.QuestionCount != 3 || got.Mode != interview.ModeTechnical || got.UserID != "user-1" {
		t.Errorf("unexpected session fields: %+v", got)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("expected created_at %v, got %v", t0, got.CreatedAt)
	}
	if got.CompletedAt != nil {
		t.Error("expected nil completed_at")
	}

	latest, err := s.LatestTurn(ctx, session.ID)
	if err != nil {
		t.Fatalf("latest turn: %v", err)
	}
	if latest.ID != first.ID || latest.Index != 1 || latest.IsAnswered() || latest.IsEvaluated() {
		t.Errorf("unexpected first turn: %+v", latest)
	}
}

func TestCreateSession_RollsBackOnTurnFailure(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	session, err := interview.New("user-1", interview.ModeTechnical, 3, t0)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	bad := interview.NewTurn(session.ID, 0, "index zero violates the check", t0)

	if err := s.CreateSession(ctx, session, bad); err == nil {
		t.Fatal("expected error for invalid turn")
	}
	if _, err := s.GetSession(ctx, session.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected session to be rolled back, got %v", err)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	s := newStore(t)
	if _, err := s.GetSession(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestTurn_NoTurns(t *testing.T) {
	s := newStore(t)
	if _, err := s.LatestTurn(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveAnswer_OnlyOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	session, first := seedSession(t, s, "user-1", 3)

	if err := s.SaveAnswer(ctx, first.ID, "first answer", t0.Add(time.Minute)); err != nil {
		t.Fatalf("save answer: %v", err)
	}
	err := s.SaveAnswer(ctx, first.ID, "second answer", t0.Add(2*time.Minute))
	if !errors.Is(err, store.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}

	latest, _ := s.LatestTurn(ctx, session.ID)
	if latest.AnswerText() != "first answer" {
		t.Errorf("expected stored answer unchanged, got %q", latest.AnswerText())
	}
	if latest.AnsweredAt == nil || !latest.AnsweredAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("unexpected answered_at: %v", latest.AnsweredAt)
	}
}

func TestSaveAnswer_UnknownTurn(t *testing.T) {
	s := newStore(t)
	if err := s.SaveAnswer(context.Background(), "missing", "x", t0); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveAnswer_ConcurrentSubmissions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, first := seedSession(t, s, "user-1", 3)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.SaveAnswer(ctx, first.ID, "racing answer", t0)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, store.ErrAlreadyAnswered) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one successful submission, got %d", succeeded)
	}
}

func TestSaveEvaluation_RequiresAnswer(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, first := seedSession(t, s, "user-1", 3)

	err := s.SaveEvaluation(ctx, interview.NewEvaluation(first.ID, 4, "Solid.", t0))
	if !errors.Is(err, store.ErrNotAnswered) {
		t.Errorf("expected ErrNotAnswered, got %v", err)
	}
}

func TestSaveEvaluation_AtMostOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	session, first := seedSession(t, s, "user-1", 3)

	if err := s.SaveAnswer(ctx, first.ID, "answer", t0); err != nil {
		t.Fatalf("save answer: %v", err)
	}
	if err := s.SaveEvaluation(ctx, interview.NewEvaluation(first.ID, 4, "Solid.", t0)); err != nil {
		t.Fatalf("save evaluation: %v", err)
	}
	err := s.SaveEvaluation(ctx, interview.NewEvaluation(first.ID, 2, "Weak.", t0))
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	turns, err := s.ListTurns(ctx, session.ID)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if turns[0].Evaluation == nil || turns[0].Evaluation.Score != 4 || turns[0].Evaluation.Feedback != "Solid." {
		t.Errorf("unexpected evaluation: %+v", turns[0].Evaluation)
	}
}

func TestAddTurn_DuplicateIndex(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	session, _ := seedSession(t, s, "user-1", 3)

	if err := s.AddTurn(ctx, interview.NewTurn(session.ID, 2, "q2", t0)); err != nil {
		t.Fatalf("add turn: %v", err)
	}
	err := s.AddTurn(ctx, interview.NewTurn(session.ID, 2, "q2 again", t0))
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestAddTurn_ClosedSession(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	session, _ := seedSession(t, s, "user-1", 1)

	if err := s.CompleteSession(ctx, session.ID, t0); err != nil {
		t.Fatalf("complete: %v", err)
	}
	err := s.AddTurn(ctx, interview.NewTurn(session.ID, 2, "late", t0))
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestAddTurn_UnknownSession(t *testing.T) {
	s := newStore(t)
	err := s.AddTurn(context.Background(), interview.NewTurn("missing", 1, "q", t0))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteSession(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	session, _ := seedSession(t, s, "user-1", 1)
	done := t0.Add(time.Hour)

	if err := s.CompleteSession(ctx, session.ID, done); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, _ := s.GetSession(ctx, session.ID)
	if got.Status != interview.StatusDone {
		t.Errorf("expected done, got %s", got.Status)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Errorf("unexpected completed_at: %v", got.CompletedAt)
	}

	if err := s.CompleteSession(ctx, session.ID, done); !errors.Is(err, store.ErrConflict) {
		t.Errorf("expected ErrConflict on second close, got %v", err)
	}
	if err := s.CompleteSession(ctx, "missing", done); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTurns_OrderedByIndex(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	session, _ := seedSession(t, s, "user-1", 3)

	// Inserted out of order on purpose.
	s.AddTurn(ctx, interview.NewTurn(session.ID, 3, "q3", t0))
	s.AddTurn(ctx, interview.NewTurn(session.ID, 2, "q2", t0))

	turns, err := s.ListTurns(ctx, session.ID)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	for i, turn := range turns {
		if turn.Index != i+1 {
			t.Errorf("position %d: expected index %d, got %d", i, i+1, turn.Index)
		}
	}
}

func TestListSessions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	older, first := seedSession(t, s, "user-1", 2)
	if err := s.SaveAnswer(ctx, first.ID, "a1", t0); err != nil {
		t.Fatalf("save answer: %v", err)
	}
	if err := s.SaveEvaluation(ctx, interview.NewEvaluation(first.ID, 4, "Good.", t0)); err != nil {
		t.Fatalf("save evaluation: %v", err)
	}
	second := interview.NewTurn(older.ID, 2, "q2", t0)
	if err := s.AddTurn(ctx, second); err != nil {
		t.Fatalf("add turn: %v", err)
	}
	if err := s.SaveAnswer(ctx, second.ID, "a2", t0); err != nil {
		t.Fatalf("save answer: %v", err)
	}
	if err := s.SaveEvaluation(ctx, interview.NewEvaluation(second.ID, 1, "Off topic.", t0)); err != nil {
		t.Fatalf("save evaluation: %v", err)
	}

	newer, err := interview.New("user-1", interview.ModeBehavioral, 5, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.CreateSession(ctx, newer, interview.NewTurn(newer.ID, 1, "Tell me about a conflict.", t0.Add(time.Hour))); err != nil {
		t.Fatalf("create session: %v", err)
	}
	seedSession(t, s, "someone-else", 1)

	list, err := s.ListSessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	if list[0].Session.ID != newer.ID {
		t.Errorf("expected newest session first")
	}
	if list[0].AnsweredCount != 0 || list[0].AverageScore != nil {
		t.Errorf("unexpected counters for fresh session: %+v", list[0])
	}
	if list[1].AnsweredCount != 2 {
		t.Errorf("expected 2 answered, got %d", list[1].AnsweredCount)
	}
	if list[1].AverageScore == nil || *list[1].AverageScore != 2.5 {
		t.Errorf("expected average 2.5, got %v", list[1].AverageScore)
	}
}
