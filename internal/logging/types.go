package logging

import "time"

// #region tick-entry
// TickEntry is a single row in the tick_log table.
type TickEntry struct {
	TickID          string
	GoalCount       int
	CandidateCount  int
	SurvivorCount   int
	EliminatedCount int
	AuthorizedCount int
	DeniedCount     int
	FailureCount    int
	ResultJSON      string // full tick result, for replay
	EvalPassed      bool
	EvalReason      string
	CreatedAt       time.Time
}
// #endregion tick-entry

// #region deliberation-entry
// DeliberationEntry is a single row in the deliberation_log table.
type DeliberationEntry struct {
	DeliberationID string
	Trigger        string
	Reason         string // termination reason
	Iterations     int
	PatternCount   int
	FinalAnswer    string
	TraceJSON      string
	CreatedAt      time.Time
}
// #endregion deliberation-entry
