package replay

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/goal"
	"github.com/danielpatrickdp/alive-runtime/internal/pipeline"
)

func activeGoal(id string) goal.Goal {
	return goal.Goal{ID: id, Status: goal.StatusActive, Strength: goal.Strength{Current: 0.5}}
}

func speakContext() pipeline.Context {
	return pipeline.Context{
		Capabilities: gate.CapabilityIDList{"speak"},
		Declarations: map[string]pipeline.Declaration{
			"intent:a": {RequiresCapabilities: []string{"speak"}},
		},
	}
}

// 1. Ticks are independent: the same snapshot replays to the same result.
func TestReplay_Deterministic(t *testing.T) {
	ticks := []FixtureTick{
		{TickID: "1", Goals: []goal.Goal{activeGoal("a"), activeGoal("b")}},
		{TickID: "2", Goals: []goal.Goal{activeGoal("a"), activeGoal("b")}},
	}
	results := Replay(speakContext(), ticks)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if len(r.Result.AuthorizedIntents) != 1 || r.Result.AuthorizedIntents[0].ID != "intent:a" {
			t.Errorf("tick %s: expected intent:a authorized, got %+v", r.TickID, r.Result.AuthorizedIntents)
		}
		if !r.Eval.Passed {
			t.Errorf("tick %s: eval failed: %s", r.TickID, r.Eval.Reason)
		}
	}
}

// 2. Summarize counts every stage.
func TestSummarize(t *testing.T) {
	results := Replay(speakContext(), []FixtureTick{
		{TickID: "1", Goals: []goal.Goal{activeGoal("a"), activeGoal("b")}},
		{TickID: "2", Goals: []goal.Goal{{ID: ""}}},
	})
	s := Summarize(results)

	want := ReplaySummary{TotalTicks: 2, Authorized: 1, Denied: 1, Failures: 1}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
}

// 3. Compare reports a count mismatch and still diffs the paired ticks.
func TestCompare_CountMismatch(t *testing.T) {
	results := Replay(speakContext(), []FixtureTick{{TickID: "1", Goals: []goal.Goal{activeGoal("a")}}})
	mismatches := Compare(results, []FixtureExpectedResult{
		{TickID: "1", Authorized: []string{"intent:a"}},
		{TickID: "2"},
	})

	if len(mismatches) != 1 || mismatches[0].Field != "count" {
		t.Fatalf("expected a single count mismatch, got %v", mismatches)
	}
}

// 4. Optional expectations are skipped when absent and checked when present.
func TestCompare_OptionalFields(t *testing.T) {
	results := Replay(speakContext(), []FixtureTick{{TickID: "1", Goals: []goal.Goal{activeGoal("b")}}})

	if m := Compare(results, []FixtureExpectedResult{{TickID: "1"}}); len(m) != 0 {
		t.Fatalf("expected no mismatches without denied expectations, got %v", m)
	}

	m := Compare(results, []FixtureExpectedResult{{TickID: "1", Denied: []gate.Denial{}}})
	if len(m) != 1 || m[0].Field != "denied" {
		t.Fatalf("expected a denied mismatch, got %v", m)
	}
	if !strings.Contains(m[0].String(), "missing_capability_declaration") {
		t.Fatalf("expected the diff to name the denial, got %q", m[0].String())
	}
}

// 5. Deliberation replays report a changed termination.
func TestReplayDeliberations(t *testing.T) {
	runs := []FixtureDeliberation{
		{Trigger: "x", ExpectedReason: "diminishing_returns", ExpectedIterations: 2},
		{Trigger: "x", ExpectedReason: "max_iterations"},
	}
	m := ReplayDeliberations(pipeline.Context{}, runs)

	if len(m) != 1 || m[0].TickID != "deliberation[1]" || m[0].Field != "reason" {
		t.Fatalf("expected one reason mismatch on the second run, got %v", m)
	}
}
