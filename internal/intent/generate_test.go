package intent

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/alive-runtime/internal/goal"
	"github.com/google/go-cmp/cmp"
)

func TestGenerateSingleActiveGoal(t *testing.T) {
	res := Generate([]goal.Goal{
		{ID: "g1", Status: goal.StatusActive, Strength: goal.Strength{Current: 0.9}},
	})

	if len(res.Failures) != 0 {
		t.Fatalf("expected no failures, got %+v", res.Failures)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(res.Candidates))
	}
	c := res.Candidates[0]
	if c.ID != "intent:g1" {
		t.Errorf("expected id intent:g1, got %s", c.ID)
	}
	if c.Priority != 90 {
		t.Errorf("expected priority 90, got %d", c.Priority)
	}
	if c.Source != SourceGoalDriven {
		t.Errorf("expected goal-driven source, got %s", c.Source)
	}
	want := map[string]any{"kind": "pursue_goal", "goalId": "g1"}
	if diff := cmp.Diff(want, c.Payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateSkipsInactiveAndPreservesOrder(t *testing.T) {
	res := Generate([]goal.Goal{
		{ID: "c", Status: goal.StatusActive, Strength: goal.Strength{Current: 0.1}},
		{ID: "x", Status: goal.StatusSuspended, Strength: goal.Strength{Current: 1}},
		{ID: "a", Status: goal.StatusActive, Strength: goal.Strength{Current: 0.5}},
		{ID: "d", Status: goal.StatusCompleted, Strength: goal.Strength{Current: 1}},
		{ID: "b", Status: goal.StatusActive, Strength: goal.Strength{Current: 0.99}},
	})

	var ids []string
	for _, c := range res.Candidates {
		ids = append(ids, c.ID)
	}
	want := []string{"intent:c", "intent:a", "intent:b"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateMalformedGoalFailsEmpty(t *testing.T) {
	res := Generate([]goal.Goal{
		{ID: "g1", Status: goal.StatusActive, Strength: goal.Strength{Current: 0.9}},
		{ID: "", Status: goal.StatusActive},
		{ID: "g3", Status: goal.StatusActive, Strength: goal.Strength{Current: 0.2}},
	})

	if len(res.Candidates) != 0 {
		t.Fatalf("expected no candidates on malformed input, got %d", len(res.Candidates))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(res.Failures))
	}
	f := res.Failures[0]
	if f.Code != "malformed_goal" || f.Subsystem != SubsystemGeneration {
		t.Errorf("unexpected failure %+v", f)
	}
	if f.Details["index"] != 1 {
		t.Errorf("expected failing index 1, got %v", f.Details["index"])
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	res := Generate(nil)
	if res.Candidates == nil || res.Failures == nil {
		t.Fatal("expected non-nil empty slices")
	}
	if len(res.Candidates) != 0 || len(res.Failures) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestGenerateNormalizesStrength(t *testing.T) {
	tests := []struct {
		name         string
		current      float64
		wantConf     float64
		wantPriority int
	}{
		{"nan", math.NaN(), 0, 0},
		{"negative", -0.4, 0, 0},
		{"above one", 1.7, 1, 100},
		{"fraction", 0.456, 0.456, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Generate([]goal.Goal{{ID: "g", Status: goal.StatusActive, Strength: goal.Strength{Current: tt.current}}})
			c := res.Candidates[0]
			if c.Confidence != tt.wantConf {
				t.Errorf("confidence: want %v, got %v", tt.wantConf, c.Confidence)
			}
			if c.Priority != tt.wantPriority {
				t.Errorf("priority: want %d, got %d", tt.wantPriority, c.Priority)
			}
		})
	}
}

func TestGenerateIgnoresOtherGoalFields(t *testing.T) {
	rate := 0.3
	plain := Generate([]goal.Goal{{ID: "g", Status: goal.StatusActive, Strength: goal.Strength{Current: 0.7}}})
	rich := Generate([]goal.Goal{{
		ID:            "g",
		Status:        goal.StatusActive,
		Strength:      goal.Strength{Current: 0.7, DecayRate: &rate, StrengtheningRate: &rate},
		Relationships: &goal.Relationships{Parent: "p", Blockers: []string{"b"}},
	}})
	if diff := cmp.Diff(plain, rich); diff != "" {
		t.Fatalf("non-strength fields influenced generation (-plain +rich):\n%s", diff)
	}
}

func TestScopeExceeds(t *testing.T) {
	if ScopeSession.Exceeds(ScopeUser) {
		t.Error("session should not exceed user")
	}
	if !ScopeSystem.Exceeds(ScopeUser) {
		t.Error("system should exceed user")
	}
	if ScopeRuntime.Exceeds(ScopeRuntime) {
		t.Error("runtime should not exceed itself")
	}
	if !Scope("root").Exceeds(ScopeSystem) {
		t.Error("unknown scope should exceed everything")
	}
	if _, err := ParseScope("galaxy"); err == nil {
		t.Error("expected error for unknown scope")
	}
}
