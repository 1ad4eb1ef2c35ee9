package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/alive-runtime/internal/eval"
	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/logging"
	"github.com/danielpatrickdp/alive-runtime/internal/memory"
	"github.com/danielpatrickdp/alive-runtime/internal/store"
)

// #region config

// RuntimeConfig tunes memory derivation for a Runtime.
type RuntimeConfig struct {
	Memory memory.Options
	Recall memory.RecallOptions
	Reset  *memory.ResetThresholds
	// EventLimit caps how many of the newest events are derived per call; 0 means all.
	EventLimit int
}

// DefaultRuntimeConfig returns stock memory tuning over the newest 1000 events.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Memory:     memory.DefaultOptions(),
		EventLimit: 1000,
	}
}

// #endregion config

// EventDeliberation is the experience event appended after each Think.
const EventDeliberation = "deliberation"

// #region runtime-struct

// Runtime binds the pure pipeline to a store: it loads goal and event snapshots, runs the
// pipeline, checks invariants and records provenance.
type Runtime struct {
	store *store.Store
	ctx   Context
	cfg   RuntimeConfig
	now   func() time.Time
	log   *slog.Logger
}

// NewRuntime creates a runtime over st. ctx.Memory is ignored; Think reads the stream view.
func NewRuntime(st *store.Store, ctx Context, cfg RuntimeConfig) *Runtime {
	return &Runtime{
		store: st,
		ctx:   ctx,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logging.New("pipeline"),
	}
}

// SetClock replaces the wall clock, for tests and replays.
func (r *Runtime) SetClock(now func() time.Time) {
	r.now = now
}

// #endregion runtime-struct

// #region run-tick

// RunTick runs one tick over the stored goal snapshot and logs a tick_log row.
func (r *Runtime) RunTick() (TickReport, error) {
	goals, err := r.store.ListGoals()
	if err != nil {
		return TickReport{}, fmt.Errorf("run tick: %w", err)
	}

	res := Tick(goals, r.ctx)
	report := TickReport{
		TickID: uuid.New().String(),
		Result: res,
		Eval:   checkTick(res),
	}

	resultJSON, err := json.Marshal(res)
	if err != nil {
		return TickReport{}, fmt.Errorf("marshal tick result: %w", err)
	}
	entry := logging.TickEntry{
		TickID:          report.TickID,
		GoalCount:       len(goals),
		CandidateCount:  len(res.Candidates),
		SurvivorCount:   len(res.SurvivingIntents),
		EliminatedCount: len(res.Eliminated),
		AuthorizedCount: len(res.AuthorizedIntents),
		DeniedCount:     len(res.Denied),
		FailureCount:    len(res.Failures),
		ResultJSON:      string(resultJSON),
		EvalPassed:      report.Eval.Passed,
		EvalReason:      report.Eval.Reason,
		CreatedAt:       r.now(),
	}
	if err := logging.LogTick(r.store.DB(), entry); err != nil {
		return TickReport{}, err
	}

	r.log.Info("tick",
		"tick_id", report.TickID,
		"goals", len(goals),
		"survivors", len(res.SurvivingIntents),
		"authorized", len(res.AuthorizedIntents),
		"denied", len(res.Denied),
		"failures", len(res.Failures))
	if !report.Eval.Passed {
		r.log.Warn("tick eval failed", "tick_id", report.TickID, "reason", report.Eval.Reason)
	}
	return report, nil
}

func checkTick(res TickResult) eval.EvalResult {
	return eval.CheckTick(res.Candidates,
		gate.ArbitrationResult{SurvivingIntents: res.SurvivingIntents, Eliminated: res.Eliminated},
		gate.AuthorizationResult{AuthorizedIntents: res.AuthorizedIntents, Denied: res.Denied})
}

// #endregion run-tick

// #region think

// Think deliberates over trigger with the current stream view as memory, stores the resulting
// pattern candidates, logs a deliberation_log row and appends a deliberation event.
func (r *Runtime) Think(trigger string) (ThinkReport, error) {
	now := r.now()
	events, err := r.store.ListEvents(r.cfg.EventLimit)
	if err != nil {
		return ThinkReport{}, fmt.Errorf("think: %w", err)
	}
	stream := memory.DeriveStream(events, now, r.cfg.Memory.Stream)

	ctx := r.ctx
	ctx.Memory = stream
	res := Deliberate(trigger, nil, ctx)

	report := ThinkReport{
		DeliberationID: uuid.New().String(),
		Result:         res,
		Eval:           eval.CheckDeliberation(res, ctx.Dialogue),
	}

	if err := r.store.SavePatterns(report.DeliberationID, res.PatternCandidates); err != nil {
		return ThinkReport{}, fmt.Errorf("save patterns: %w", err)
	}
	traceJSON, err := json.Marshal(res.Trace)
	if err != nil {
		return ThinkReport{}, fmt.Errorf("marshal trace: %w", err)
	}
	entry := logging.DeliberationEntry{
		DeliberationID: report.DeliberationID,
		Trigger:        trigger,
		Reason:         string(res.Reason),
		Iterations:     res.Iterations,
		PatternCount:   len(res.PatternCandidates),
		FinalAnswer:    res.FinalAnswer,
		TraceJSON:      string(traceJSON),
		CreatedAt:      now,
	}
	if err := logging.LogDeliberation(r.store.DB(), entry); err != nil {
		return ThinkReport{}, err
	}

	payload, err := json.Marshal(map[string]any{
		"deliberationId": report.DeliberationID,
		"trigger":        trigger,
		"reason":         res.Reason,
		"text":           res.FinalAnswer,
	})
	if err != nil {
		return ThinkReport{}, fmt.Errorf("marshal deliberation event: %w", err)
	}
	if _, err := r.store.AppendEvent(memory.Event{
		Timestamp:  now,
		Source:     "idl",
		Type:       EventDeliberation,
		Importance: 0.5,
		Payload:    payload,
	}); err != nil {
		return ThinkReport{}, err
	}

	r.log.Info("deliberation",
		"deliberation_id", report.DeliberationID,
		"reason", res.Reason,
		"iterations", res.Iterations,
		"patterns", len(res.PatternCandidates))
	return report, nil
}

// #endregion think

// #region memory

// Memory derives all views over the stored events, ranks long-term recall and evaluates the
// reset recommendation. It writes nothing.
func (r *Runtime) Memory() (MemoryReport, error) {
	now := r.now()
	events, err := r.store.ListEvents(r.cfg.EventLimit)
	if err != nil {
		return MemoryReport{}, fmt.Errorf("memory: %w", err)
	}

	views := memory.Derive(events, now, r.cfg.Memory)

	recallOpts := r.cfg.Recall
	recallOpts.Now = now
	inputs := memory.ResetInputsFrom(views, now)
	inputs.Thresholds = r.cfg.Reset

	report := MemoryReport{
		Views:     views,
		Recall:    memory.RankRecall(memory.RecallItemsFromLongTerm(views.LongTerm.Entries), recallOpts),
		Reset:     memory.RecommendReset(inputs),
		LongTerm:  eval.CheckLongTerm(views.LongTerm, r.cfg.Memory.LongTerm, now),
		DerivedAt: now,
	}
	if report.Reset.Level != memory.ResetNone {
		r.log.Warn("reset recommended", "level", report.Reset.Level, "reasons", report.Reset.Reasons)
	}
	return report, nil
}

// #endregion memory
