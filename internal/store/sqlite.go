package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agentbridge/gateway/internal/domain"
)

// SQLiteStore implements Store using SQLite. Selected by a non-empty
// DATABASE_URL; the gateway's default remains the in-memory store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			app_name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			state TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			ts DATETIME NOT NULL,
			type TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT,
			raw_response TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, seq)`,
		`CREATE TABLE IF NOT EXISTS eval_sets (
			eval_set_id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS eval_cases (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			case_id TEXT NOT NULL,
			eval_set_id TEXT NOT NULL,
			conversation TEXT,
			session_input TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (eval_set_id) REFERENCES eval_sets(eval_set_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_cases_set ON eval_cases(eval_set_id, seq)`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			artifact_id TEXT NOT NULL,
			content TEXT,
			version TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (session_id, name)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session row.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	state, err := marshalJSON(session.State)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, app_name, user_id, created_at, state) VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.AppName, session.UserID, session.CreatedAt, state)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	for i := range session.Events {
		if err := s.AppendEvent(ctx, session.ID, &session.Events[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetSession retrieves a session with its full event log.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var state sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, app_name, user_id, created_at, state FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.ID, &session.AppName, &session.UserID, &session.CreatedAt, &state)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.State = map[string]any{}
	if state.Valid && state.String != "" {
		if err := json.Unmarshal([]byte(state.String), &session.State); err != nil {
			return nil, fmt.Errorf("failed to decode session state: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, ts, type, role, content, raw_response FROM events WHERE session_id = ? ORDER BY seq`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	session.Events = []domain.Event{}
	for rows.Next() {
		var event domain.Event
		var content, raw sql.NullString
		if err := rows.Scan(&event.ID, &event.Timestamp, &event.Type, &event.Role, &content, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.SessionID = sessionID
		if content.Valid && content.String != "" {
			if err := json.Unmarshal([]byte(content.String), &event.Content); err != nil {
				return nil, fmt.Errorf("failed to decode event content: %w", err)
			}
		}
		if raw.Valid && raw.String != "" {
			if err := json.Unmarshal([]byte(raw.String), &event.RawResponse); err != nil {
				return nil, fmt.Errorf("failed to decode raw response: %w", err)
			}
		}
		session.Events = append(session.Events, event)
	}
	return &session, rows.Err()
}

// ListSessions scans all sessions filtered by owner app and user.
func (s *SQLiteStore) ListSessions(ctx context.Context, appName, userID string) ([]domain.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.session_id, s.app_name, s.user_id, s.created_at,
			(SELECT COUNT(*) FROM events e WHERE e.session_id = s.session_id)
		 FROM sessions s WHERE s.app_name = ? AND s.user_id = ?`,
		appName, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	summaries := []domain.SessionSummary{}
	for rows.Next() {
		var summary domain.SessionSummary
		if err := rows.Scan(&summary.ID, &summary.AppName, &summary.UserID, &summary.CreatedAt, &summary.EventCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// DeleteSession removes a session and its events.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// AppendEvent appends one event row to the session's log.
func (s *SQLiteStore) AppendEvent(ctx context.Context, sessionID string, event *domain.Event) error {
	if _, err := s.GetSessionOwner(ctx, sessionID); err != nil {
		return err
	}
	content, err := marshalJSON(event.Content)
	if err != nil {
		return err
	}
	raw, err := marshalJSON(event.RawResponse)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, session_id, ts, type, role, content, raw_response) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, sessionID, event.Timestamp, string(event.Type), event.Role, content, raw)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// UpdateSessionState replaces the state snapshot.
func (s *SQLiteStore) UpdateSessionState(ctx context.Context, sessionID string, state map[string]any) error {
	encoded, err := marshalJSON(state)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET state = ? WHERE session_id = ?`, encoded, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetSessionOwner returns the owning (app, user) pair without loading the
// event log.
func (s *SQLiteStore) GetSessionOwner(ctx context.Context, sessionID string) (*domain.SessionSummary, error) {
	var summary domain.SessionSummary
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, app_name, user_id, created_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&summary.ID, &summary.AppName, &summary.UserID, &summary.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &summary, nil
}

// CreateEvalSet registers an eval set.
func (s *SQLiteStore) CreateEvalSet(ctx context.Context, set *domain.EvalSet) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO eval_sets (eval_set_id, name) VALUES (?, ?)`,
		set.ID, set.Name)
	if err != nil {
		return fmt.Errorf("failed to create eval set: %w", err)
	}
	for i := range set.Cases {
		if err := s.AddEvalCase(ctx, set.ID, &set.Cases[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetEvalSet retrieves an eval set with its cases in insertion order.
func (s *SQLiteStore) GetEvalSet(ctx context.Context, setID string) (*domain.EvalSet, error) {
	var set domain.EvalSet
	err := s.db.QueryRowContext(ctx,
		`SELECT eval_set_id, name FROM eval_sets WHERE eval_set_id = ?`, setID).
		Scan(&set.ID, &set.Name)
	if err == sql.ErrNoRows {
		return nil, ErrEvalSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get eval set: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT case_id, conversation, session_input, created_at FROM eval_cases WHERE eval_set_id = ? ORDER BY seq`,
		setID)
	if err != nil {
		return nil, fmt.Errorf("failed to get eval cases: %w", err)
	}
	defer rows.Close()

	set.Cases = []domain.EvalCase{}
	for rows.Next() {
		var evalCase domain.EvalCase
		var conversation, sessionInput sql.NullString
		if err := rows.Scan(&evalCase.ID, &conversation, &sessionInput, &evalCase.CreationTimestamp); err != nil {
			return nil, fmt.Errorf("failed to scan eval case: %w", err)
		}
		if conversation.Valid && conversation.String != "" {
			if err := json.Unmarshal([]byte(conversation.String), &evalCase.Conversation); err != nil {
				return nil, fmt.Errorf("failed to decode conversation: %w", err)
			}
		}
		if sessionInput.Valid && sessionInput.String != "" {
			if err := json.Unmarshal([]byte(sessionInput.String), &evalCase.SessionInput); err != nil {
				return nil, fmt.Errorf("failed to decode session input: %w", err)
			}
		}
		set.Cases = append(set.Cases, evalCase)
	}
	return &set, rows.Err()
}

// ListEvalSets returns summaries of every eval set.
func (s *SQLiteStore) ListEvalSets(ctx context.Context) ([]domain.EvalSetSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.eval_set_id, s.name,
			(SELECT COUNT(*) FROM eval_cases c WHERE c.eval_set_id = s.eval_set_id)
		 FROM eval_sets s`)
	if err != nil {
		return nil, fmt.Errorf("failed to list eval sets: %w", err)
	}
	defer rows.Close()

	summaries := []domain.EvalSetSummary{}
	for rows.Next() {
		var summary domain.EvalSetSummary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.CaseCount); err != nil {
			return nil, fmt.Errorf("failed to scan eval set: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// AddEvalCase appends one case to the set.
func (s *SQLiteStore) AddEvalCase(ctx context.Context, setID string, evalCase *domain.EvalCase) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM eval_sets WHERE eval_set_id = ?`, setID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check eval set: %w", err)
	}
	if exists == 0 {
		return ErrEvalSetNotFound
	}
	conversation, err := marshalJSON(evalCase.Conversation)
	if err != nil {
		return err
	}
	sessionInput, err := marshalJSON(evalCase.SessionInput)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO eval_cases (case_id, eval_set_id, conversation, session_input, created_at) VALUES (?, ?, ?, ?, ?)`,
		evalCase.ID, setID, conversation, sessionInput, evalCase.CreationTimestamp)
	if err != nil {
		return fmt.Errorf("failed to add eval case: %w", err)
	}
	return nil
}

// PutArtifact upserts the latest version for sessionID + name.
func (s *SQLiteStore) PutArtifact(ctx context.Context, sessionID string, artifact *domain.Artifact) error {
	content, err := marshalJSON(artifact.Content)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO artifacts (session_id, name, artifact_id, content, version, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, artifact.Name, artifact.ID, content, artifact.Version, artifact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put artifact: %w", err)
	}
	return nil
}

// GetArtifact returns the latest stored version.
func (s *SQLiteStore) GetArtifact(ctx context.Context, sessionID, name string) (*domain.Artifact, error) {
	var artifact domain.Artifact
	var content sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT artifact_id, name, content, version, created_at FROM artifacts WHERE session_id = ? AND name = ?`,
		sessionID, name).
		Scan(&artifact.ID, &artifact.Name, &content, &artifact.Version, &artifact.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	if content.Valid && content.String != "" {
		if err := json.Unmarshal([]byte(content.String), &artifact.Content); err != nil {
			return nil, fmt.Errorf("failed to decode artifact content: %w", err)
		}
	}
	return &artifact, nil
}

func marshalJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal value: %w", err)
	}
	return string(encoded), nil
}
