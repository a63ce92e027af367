// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/interviewcoach/backend/internal/domain/interview"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    question_count INTEGER NOT NULL CHECK (question_count >= 1),
    status TEXT NOT NULL DEFAULT 'in_progress',
    created_at TEXT NOT NULL,
    completed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions (user_id, created_at);

CREATE TABLE IF NOT EXISTS turns (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    turn_index INTEGER NOT NULL CHECK (turn_index >= 1),
    question TEXT NOT NULL,
    answer TEXT,
    answered_at TEXT,
    created_at TEXT NOT NULL,
    UNIQUE (session_id, turn_index),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS evaluations (
    id TEXT PRIMARY KEY,
    turn_id TEXT NOT NULL UNIQUE,
    score INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
    feedback TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (turn_id) REFERENCES turns(id) ON DELETE CASCADE
);
`

// Fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check: *SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens (or creates) the database at dbPath and applies the schema.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Sessions
// ============================================================================

func (s *SQLiteStore) CreateSession(ctx context.Context, session *interview.Session, first *interview.Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, mode, question_count, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		session.ID, session.UserID, string(session.Mode), session.QuestionCount, string(session.Status), formatTime(session.CreatedAt),
	)
	if err != nil {
		return classify(err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO turns (id, session_id, turn_index, question, created_at) VALUES (?, ?, ?, ?, ?)",
		first.ID, session.ID, first.Index, first.Question, formatTime(first.CreatedAt),
	)
	if err != nil {
		return classify(err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*interview.Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, mode, question_count, status, created_at, completed_at FROM sessions WHERE id = ?", id,
	)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.mode, s.question_count, s.status, s.created_at, s.completed_at,
		       COUNT(t.answer), AVG(e.score)
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.id
		LEFT JOIN evaluations e ON e.turn_id = t.id
		WHERE s.user_id = ?
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var (
			sum         SessionSummary
			mode        string
			status      string
			createdAt   string
			completedAt sql.NullString
			avg         sql.NullFloat64
		)
		if err := rows.Scan(
			&sum.Session.ID, &sum.Session.UserID, &mode, &sum.Session.QuestionCount, &status,
			&createdAt, &completedAt, &sum.AnsweredCount, &avg,
		); err != nil {
			return nil, err
		}
		sum.Session.Mode = interview.Mode(mode)
		sum.Session.Status = interview.Status(status)
		if sum.Session.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if sum.Session.CompletedAt, err = parseNullTime(completedAt); err != nil {
			return nil, err
		}
		if avg.Valid {
			v := avg.Float64
			sum.AverageScore = &v
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// CompleteSession moves an in_progress session to done. Closing an already
// closed session is ErrConflict.
func (s *SQLiteStore) CompleteSession(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET status = ?, completed_at = ? WHERE id = ? AND status = ?",
		string(interview.StatusDone), formatTime(at), id, string(interview.StatusInProgress),
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, err := s.GetSession(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// ============================================================================
// Turns
// ============================================================================

// AddTurn inserts a turn only while its session is in_progress. A duplicate
// index or a closed session is ErrConflict.
func (s *SQLiteStore) AddTurn(ctx context.Context, t *interview.Turn) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (id, session_id, turn_index, question, created_at)
		SELECT ?, id, ?, ?, ? FROM sessions WHERE id = ? AND status = ?`,
		t.ID, t.Index, t.Question, formatTime(t.CreatedAt), t.SessionID, string(interview.StatusInProgress),
	)
	if err != nil {
		return classify(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, err := s.GetSession(ctx, t.SessionID); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

const turnColumns = `
	t.id, t.session_id, t.turn_index, t.question, t.answer, t.answered_at, t.created_at,
	e.id, e.score, e.feedback, e.created_at
	FROM turns t
	LEFT JOIN evaluations e ON e.turn_id = t.id`

func (s *SQLiteStore) ListTurns(ctx context.Context, sessionID string) ([]interview.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+turnColumns+" WHERE t.session_id = ? ORDER BY t.turn_index",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []interview.Turn
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, *t)
	}
	return turns, rows.Err()
}

func (s *SQLiteStore) LatestTurn(ctx context.Context, sessionID string) (*interview.Turn, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT"+turnColumns+" WHERE t.session_id = ? ORDER BY t.turn_index DESC LIMIT 1",
		sessionID,
	)
	t, err := scanTurn(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SaveAnswer sets the answer with a single conditional update, so of two
// concurrent submissions for the same turn exactly one succeeds.
func (s *SQLiteStore) SaveAnswer(ctx context.Context, turnID, answer string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE turns SET answer = ?, answered_at = ? WHERE id = ? AND answer IS NULL",
		answer, formatTime(at), turnID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT 1 FROM turns WHERE id = ?", turnID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyAnswered
	}
	return nil
}

// ============================================================================
// Evaluations
// ============================================================================

// SaveEvaluation inserts the evaluation only if its turn is answered. A second
// evaluation for the same turn is ErrConflict.
func (s *SQLiteStore) SaveEvaluation(ctx context.Context, e *interview.Evaluation) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, turn_id, score, feedback, created_at)
		SELECT ?, id, ?, ?, ? FROM turns WHERE id = ? AND answer IS NOT NULL`,
		e.ID, e.Score, e.Feedback, formatTime(e.CreatedAt), e.TurnID,
	)
	if err != nil {
		return classify(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT 1 FROM turns WHERE id = ?", e.TurnID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrNotAnswered
	}
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*interview.Session, error) {
	var (
		session     interview.Session
		mode        string
		status      string
		createdAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(&session.ID, &session.UserID, &mode, &session.QuestionCount, &status, &createdAt, &completedAt); err != nil {
		return nil, err
	}
	session.Mode = interview.Mode(mode)
	session.Status = interview.Status(status)

	var err error
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if session.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	return &session, nil
}

func scanTurn(row scanner) (*interview.Turn, error) {
	var (
		t           interview.Turn
		answer      sql.NullString
		answeredAt  sql.NullString
		createdAt   string
		evalID      sql.NullString
		evalScore   sql.NullInt64
		evalText    sql.NullString
		evalCreated sql.NullString
	)
	if err := row.Scan(
		&t.ID, &t.SessionID, &t.Index, &t.Question, &answer, &answeredAt, &createdAt,
		&evalID, &evalScore, &evalText, &evalCreated,
	); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if answer.Valid {
		a := answer.String
		t.Answer = &a
	}
	if t.AnsweredAt, err = parseNullTime(answeredAt); err != nil {
		return nil, err
	}
	if evalID.Valid {
		created, err := parseTime(evalCreated.String)
		if err != nil {
			return nil, err
		}
		t.Evaluation = &interview.Evaluation{
			ID:        evalID.String,
			TurnID:    t.ID,
			Score:     int(evalScore.Int64),
			Feedback:  evalText.String,
			CreatedAt: created,
		}
	}
	return &t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// classify maps unique-index violations to ErrConflict.
func classify(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(se.Error(), "UNIQUE") {
				return fmt.Errorf("%w: %v", ErrConflict, err)
			}
		}
	}
	return err
}
