package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
// Schema creates the provenance tables. The store runs it during migration.
const Schema = `
CREATE TABLE IF NOT EXISTS tick_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	tick_id          TEXT NOT NULL UNIQUE,
	goal_count       INTEGER NOT NULL,
	candidate_count  INTEGER NOT NULL,
	survivor_count   INTEGER NOT NULL,
	eliminated_count INTEGER NOT NULL,
	authorized_count INTEGER NOT NULL,
	denied_count     INTEGER NOT NULL,
	failure_count    INTEGER NOT NULL,
	result_json      TEXT,
	eval_passed      INTEGER NOT NULL,
	eval_reason      TEXT,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deliberation_log (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	deliberation_id TEXT NOT NULL UNIQUE,
	trigger_text    TEXT NOT NULL,
	reason          TEXT NOT NULL,
	iterations      INTEGER NOT NULL,
	pattern_count   INTEGER NOT NULL,
	final_answer    TEXT,
	trace_json      TEXT,
	created_at      TEXT NOT NULL
);
`
// #endregion schema

// #region log-tick
// LogTick writes a provenance entry to the tick_log table.
func LogTick(db *sql.DB, entry TickEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO tick_log (tick_id, goal_count, candidate_count, survivor_count, eliminated_count,
			authorized_count, denied_count, failure_count, result_json, eval_passed, eval_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TickID,
		entry.GoalCount,
		entry.CandidateCount,
		entry.SurvivorCount,
		entry.EliminatedCount,
		entry.AuthorizedCount,
		entry.DeniedCount,
		entry.FailureCount,
		nullIfEmpty(entry.ResultJSON),
		boolToInt(entry.EvalPassed),
		nullIfEmpty(entry.EvalReason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log tick: %w", err)
	}
	return nil
}
// #endregion log-tick

// #region log-deliberation
// LogDeliberation writes a provenance entry to the deliberation_log table.
func LogDeliberation(db *sql.DB, entry DeliberationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO deliberation_log (deliberation_id, trigger_text, reason, iterations, pattern_count,
			final_answer, trace_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.DeliberationID,
		entry.Trigger,
		entry.Reason,
		entry.Iterations,
		entry.PatternCount,
		nullIfEmpty(entry.FinalAnswer),
		nullIfEmpty(entry.TraceJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log deliberation: %w", err)
	}
	return nil
}
// #endregion log-deliberation

// #region recent
// RecentTicks returns the newest tick_log rows first.
func RecentTicks(db *sql.DB, limit int) ([]TickEntry, error) {
	rows, err := db.Query(
		`SELECT tick_id, goal_count, candidate_count, survivor_count, eliminated_count, authorized_count,
			denied_count, failure_count, result_json, eval_passed, eval_reason, created_at
		 FROM tick_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent ticks: %w", err)
	}
	defer rows.Close()

	var entries []TickEntry
	for rows.Next() {
		var e TickEntry
		var resultJSON, evalReason sql.NullString
		var passed int
		var createdStr string
		if err := rows.Scan(&e.TickID, &e.GoalCount, &e.CandidateCount, &e.SurvivorCount, &e.EliminatedCount,
			&e.AuthorizedCount, &e.DeniedCount, &e.FailureCount, &resultJSON, &passed, &evalReason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		e.ResultJSON = resultJSON.String
		e.EvalPassed = passed == 1
		e.EvalReason = evalReason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentDeliberations returns the newest deliberation_log rows first.
func RecentDeliberations(db *sql.DB, limit int) ([]DeliberationEntry, error) {
	rows, err := db.Query(
		`SELECT deliberation_id, trigger_text, reason, iterations, pattern_count, final_answer, trace_json, created_at
		 FROM deliberation_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent deliberations: %w", err)
	}
	defer rows.Close()

	var entries []DeliberationEntry
	for rows.Next() {
		var e DeliberationEntry
		var finalAnswer, traceJSON sql.NullString
		var createdStr string
		if err := rows.Scan(&e.DeliberationID, &e.Trigger, &e.Reason, &e.Iterations, &e.PatternCount,
			&finalAnswer, &traceJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan deliberation: %w", err)
		}
		e.FinalAnswer = finalAnswer.String
		e.TraceJSON = traceJSON.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
// #endregion helpers
