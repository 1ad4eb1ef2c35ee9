package replay

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/danielpatrickdp/alive-runtime/internal/eval"
	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/pipeline"
)

// #region types

// ReplayResult captures the outcome of replaying one tick through the pipeline.
type ReplayResult struct {
	TickID string
	Result pipeline.TickResult
	Eval   eval.EvalResult
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalTicks   int
	Authorized   int
	Eliminated   int
	Denied       int
	Failures     int
	EvalFailures int
}

// Mismatch is one difference between a replayed tick and its expected outcome.
type Mismatch struct {
	TickID string
	Field  string
	Diff   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s %s (-want +got):\n%s", m.TickID, m.Field, m.Diff)
}

// #endregion types

// #region replay

// Replay runs every tick through the pipeline under one context and checks each result.
// Ticks are independent; nothing carries over between them.
func Replay(ctx pipeline.Context, ticks []FixtureTick) []ReplayResult {
	results := make([]ReplayResult, 0, len(ticks))
	for _, tk := range ticks {
		res := pipeline.Tick(tk.Goals, ctx)
		results = append(results, ReplayResult{
			TickID: tk.TickID,
			Result: res,
			Eval: eval.CheckTick(res.Candidates,
				gate.ArbitrationResult{SurvivingIntents: res.SurvivingIntents, Eliminated: res.Eliminated},
				gate.AuthorizationResult{AuthorizedIntents: res.AuthorizedIntents, Denied: res.Denied}),
		})
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalTicks: len(results)}
	for _, r := range results {
		s.Authorized += len(r.Result.AuthorizedIntents)
		s.Eliminated += len(r.Result.Eliminated)
		s.Denied += len(r.Result.Denied)
		s.Failures += len(r.Result.Failures)
		if !r.Eval.Passed {
			s.EvalFailures++
		}
	}
	return s
}

// #endregion replay

// #region compare

// Compare diffs replay results against expectations, pairing them by position. A tick id
// or count mismatch is reported like any other field.
func Compare(results []ReplayResult, expected []FixtureExpectedResult) []Mismatch {
	var out []Mismatch
	if len(results) != len(expected) {
		out = append(out, Mismatch{
			Field: "count",
			Diff:  cmp.Diff(len(expected), len(results)),
		})
	}
	empty := cmpopts.EquateEmpty()
	for i := 0; i < min(len(results), len(expected)); i++ {
		got, want := results[i], expected[i]
		add := func(field, diff string) {
			if diff != "" {
				out = append(out, Mismatch{TickID: want.TickID, Field: field, Diff: diff})
			}
		}

		add("tick_id", cmp.Diff(want.TickID, got.TickID))
		add("authorized", cmp.Diff(want.Authorized, intentIDs(got.Result), empty))
		if want.Eliminated != nil {
			add("eliminated", cmp.Diff(want.Eliminated, got.Result.Eliminated, empty))
		}
		if want.Denied != nil {
			add("denied", cmp.Diff(want.Denied, got.Result.Denied, empty))
		}
		if want.Failures != nil {
			codes := make([]string, 0, len(got.Result.Failures))
			for _, f := range got.Result.Failures {
				codes = append(codes, f.Code)
			}
			add("failures", cmp.Diff(want.Failures, codes, empty))
		}
		if !got.Eval.Passed {
			add("eval", got.Eval.Reason)
		}
	}
	return out
}

func intentIDs(res pipeline.TickResult) []string {
	ids := make([]string, 0, len(res.AuthorizedIntents))
	for _, c := range res.AuthorizedIntents {
		ids = append(ids, c.ID)
	}
	return ids
}

// #endregion compare

// #region deliberations

// ReplayDeliberations reruns recorded dialogue runs and reports the ones that ended
// differently.
func ReplayDeliberations(ctx pipeline.Context, runs []FixtureDeliberation) []Mismatch {
	var out []Mismatch
	for i, d := range runs {
		res := pipeline.Deliberate(d.Trigger, d.Snapshot, ctx)
		id := fmt.Sprintf("deliberation[%d]", i)
		if diff := cmp.Diff(d.ExpectedReason, string(res.Reason)); diff != "" {
			out = append(out, Mismatch{TickID: id, Field: "reason", Diff: diff})
		}
		if d.ExpectedIterations > 0 && d.ExpectedIterations != res.Iterations {
			out = append(out, Mismatch{TickID: id, Field: "iterations", Diff: cmp.Diff(d.ExpectedIterations, res.Iterations)})
		}
		if ev := eval.CheckDeliberation(res, ctx.Dialogue); !ev.Passed {
			out = append(out, Mismatch{TickID: id, Field: "eval", Diff: ev.Reason})
		}
	}
	return out
}

// #endregion deliberations

// #region run-fixture

// Report is the full outcome of running one fixture file.
type Report struct {
	Path       string
	Summary    ReplaySummary
	Mismatches []Mismatch
}

// RunFixture loads path, replays its ticks and deliberations and compares them against the
// recorded expectations.
func RunFixture(path string) (Report, error) {
	f, err := LoadFixture(path)
	if err != nil {
		return Report{}, err
	}
	ctx, err := f.Context.ToContext()
	if err != nil {
		return Report{}, fmt.Errorf("fixture %s: %w", path, err)
	}
	results := Replay(ctx, f.Ticks)
	mismatches := Compare(results, f.ExpectedResults)
	mismatches = append(mismatches, ReplayDeliberations(ctx, f.Deliberations)...)
	return Report{Path: path, Summary: Summarize(results), Mismatches: mismatches}, nil
}

// #endregion run-fixture
