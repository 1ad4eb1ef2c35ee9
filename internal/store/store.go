package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
	"github.com/danielpatrickdp/alive-runtime/internal/goal"
	"github.com/danielpatrickdp/alive-runtime/internal/logging"
	"github.com/danielpatrickdp/alive-runtime/internal/memory"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS goals (
	goal_id    TEXT PRIMARY KEY,
	position   INTEGER NOT NULL,
	status     TEXT NOT NULL,
	strength   REAL NOT NULL,
	goal_json  TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS experience_events (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id   TEXT NOT NULL UNIQUE,
	v          INTEGER NOT NULL,
	ts         TEXT NOT NULL,
	source     TEXT NOT NULL,
	type       TEXT NOT NULL,
	importance REAL NOT NULL,
	payload    TEXT
);

CREATE TRIGGER IF NOT EXISTS experience_events_no_update
BEFORE UPDATE ON experience_events
BEGIN
	SELECT RAISE(ABORT, 'experience_events is append-only');
END;

CREATE TRIGGER IF NOT EXISTS experience_events_no_delete
BEFORE DELETE ON experience_events
BEGIN
	SELECT RAISE(ABORT, 'experience_events is append-only');
END;

CREATE TABLE IF NOT EXISTS pattern_candidates (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	deliberation_id TEXT NOT NULL,
	pattern_id      TEXT NOT NULL,
	title           TEXT NOT NULL,
	summary         TEXT NOT NULL,
	evidence_json   TEXT NOT NULL,
	confidence      REAL NOT NULL,
	created_at      TEXT NOT NULL,
	UNIQUE (deliberation_id, pattern_id)
);
`
// #endregion schema

// #region store-struct
// Store persists goals, the experience log and pattern candidates in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations, including the provenance tables.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := db.Exec(logging.Schema); err != nil {
		return nil, fmt.Errorf("migrate provenance: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region goals
// UpsertGoal inserts a goal at the end of the snapshot order, or replaces it in place.
func (s *Store) UpsertGoal(g goal.Goal) error {
	if g.ID == "" {
		return fmt.Errorf("upsert goal: empty id")
	}
	if !g.Status.Valid() {
		return fmt.Errorf("upsert goal %s: unknown status %q", g.ID, g.Status)
	}
	goalJSON, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO goals (goal_id, position, status, strength, goal_json, updated_at)
		 VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM goals), ?, ?, ?, ?)
		 ON CONFLICT(goal_id) DO UPDATE SET
			status = excluded.status,
			strength = excluded.strength,
			goal_json = excluded.goal_json,
			updated_at = excluded.updated_at`,
		g.ID, string(g.Status), g.Strength.Current, string(goalJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert goal %s: %w", g.ID, err)
	}
	return nil
}

// ListGoals returns the goal snapshot in insertion order.
func (s *Store) ListGoals() ([]goal.Goal, error) {
	rows, err := s.db.Query(`SELECT goal_json FROM goals ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []goal.Goal{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		var g goal.Goal
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			return nil, fmt.Errorf("unmarshal goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
// #endregion goals

// #region events
// AppendEvent appends one experience event. A missing id is minted, a zero timestamp becomes
// now, and base defaults are applied. Reusing an existing id returns ErrAppendOnly.
func (s *Store) AppendEvent(e memory.Event) (memory.Event, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	e = e.Normalized()
	if len(e.Payload) > 0 && !json.Valid(e.Payload) {
		return memory.Event{}, fmt.Errorf("append event %s: payload is not valid JSON", e.ID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return memory.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM experience_events WHERE event_id = ?`, e.ID).Scan(&exists); err != nil {
		return memory.Event{}, fmt.Errorf("check event: %w", err)
	}
	if exists > 0 {
		return memory.Event{}, fmt.Errorf("append event %s: %w", e.ID, ErrAppendOnly)
	}

	var payload interface{}
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	_, err = tx.Exec(
		`INSERT INTO experience_events (event_id, v, ts, source, type, importance, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.V, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Source, e.Type, e.Importance, payload,
	)
	if err != nil {
		return memory.Event{}, fmt.Errorf("insert event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return memory.Event{}, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}

// ListEvents returns events in append order. A positive limit keeps only the newest limit
// events, still oldest first.
func (s *Store) ListEvents(limit int) ([]memory.Event, error) {
	query := `SELECT event_id, v, ts, source, type, importance, payload FROM experience_events ORDER BY seq`
	args := []interface{}{}
	if limit > 0 {
		query = `SELECT * FROM (
			SELECT seq, event_id, v, ts, source, type, importance, payload
			FROM experience_events ORDER BY seq DESC LIMIT ?
		) ORDER BY seq`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []memory.Event{}
	for rows.Next() {
		var e memory.Event
		var seq int64
		var ts string
		var payload sql.NullString
		dest := []interface{}{&e.ID, &e.V, &ts, &e.Source, &e.Type, &e.Importance, &payload}
		if limit > 0 {
			dest = append([]interface{}{&seq}, dest...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse event %s timestamp: %w", e.ID, err)
		}
		if payload.Valid {
			e.Payload = json.RawMessage(payload.String)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
// #endregion events

// #region patterns
// SavePatterns stores the pattern candidates of one deliberation.
func (s *Store) SavePatterns(deliberationID string, patterns []dialogue.PatternCandidate) error {
	if len(patterns) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, p := range patterns {
		evidence, err := json.Marshal(p.Evidence)
		if err != nil {
			return fmt.Errorf("marshal evidence: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO pattern_candidates (deliberation_id, pattern_id, title, summary, evidence_json, confidence, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			deliberationID, p.ID, p.Title, p.Summary, string(evidence), p.Confidence, now,
		)
		if err != nil {
			return fmt.Errorf("insert pattern %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// ListPatterns returns the most recently stored pattern candidates first.
func (s *Store) ListPatterns(limit int) ([]PatternRecord, error) {
	rows, err := s.db.Query(
		`SELECT deliberation_id, pattern_id, title, summary, evidence_json, confidence, created_at
		 FROM pattern_candidates ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer rows.Close()

	var records []PatternRecord
	for rows.Next() {
		var rec PatternRecord
		var evidence, created string
		if err := rows.Scan(&rec.DeliberationID, &rec.ID, &rec.Title, &rec.Summary, &evidence, &rec.Confidence, &created); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		if err := json.Unmarshal([]byte(evidence), &rec.Evidence); err != nil {
			return nil, fmt.Errorf("unmarshal evidence: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion patterns
