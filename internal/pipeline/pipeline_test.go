package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/goal"
	"github.com/danielpatrickdp/alive-runtime/internal/intent"
)

func active(id string, strength float64) goal.Goal {
	return goal.Goal{ID: id, Status: goal.StatusActive, Strength: goal.Strength{Current: strength}}
}

func TestTickUndeclaredIntentIsDenied(t *testing.T) {
	res := Tick([]goal.Goal{active("g1", 0.9)}, Context{})

	if len(res.Candidates) != 1 || res.Candidates[0].Priority != 90 {
		t.Fatalf("expected one candidate with priority 90, got %+v", res.Candidates)
	}
	if len(res.SurvivingIntents) != 1 || res.SurvivingIntents[0].ID != "intent:g1" {
		t.Fatalf("expected intent:g1 to survive, got %+v", res.SurvivingIntents)
	}
	want := []gate.Denial{{IntentID: "intent:g1", Reason: gate.ReasonMissingDeclaration}}
	if diff := cmp.Diff(want, res.Denied); diff != "" {
		t.Fatalf("denied mismatch (-want +got):\n%s", diff)
	}
	if len(res.AuthorizedIntents) != 0 || len(res.Failures) != 0 {
		t.Fatalf("expected nothing authorized and no failures, got %+v", res)
	}
	if res.InputCount != 1 {
		t.Fatalf("expected input count 1, got %d", res.InputCount)
	}
}

func TestTickDeclarationsDriveAuthorization(t *testing.T) {
	ctx := Context{
		Capabilities: gate.CapabilityIDList{"speak"},
		Declarations: map[string]Declaration{
			"intent:g1":   {RequiresCapabilities: []string{"speak"}},
			"intent:g2":   {RequiresCapabilities: []string{"fly"}},
			"intent:g3":   {RequiresCapabilities: []string{"speak"}, AuthorizationScope: intent.ScopeSystem},
			"intent:nope": {RequiresCapabilities: []string{"speak"}},
		},
	}
	res := Tick([]goal.Goal{active("g1", 0.5), active("g2", 0.5), active("g3", 0.5)}, ctx)

	if len(res.AuthorizedIntents) != 1 || res.AuthorizedIntents[0].ID != "intent:g1" {
		t.Fatalf("expected only intent:g1 authorized, got %+v", res.AuthorizedIntents)
	}
	want := []gate.Denial{
		{IntentID: "intent:g2", Reason: gate.ReasonMissingCapability},
		{IntentID: "intent:g3", Reason: gate.ReasonUnauthorizedScope},
	}
	if diff := cmp.Diff(want, res.Denied); diff != "" {
		t.Fatalf("denied mismatch (-want +got):\n%s", diff)
	}
}

func TestTickExclusiveKeyAndConstraints(t *testing.T) {
	ctx := Context{
		Constraints: &gate.Constraints{RejectedIntentIDs: []string{"intent:g1"}},
		Declarations: map[string]Declaration{
			"intent:g2": {ExclusiveKey: "voice"},
			"intent:g3": {ExclusiveKey: "voice"},
		},
	}
	res := Tick([]goal.Goal{active("g1", 1), active("g2", 0.2), active("g3", 0.8)}, ctx)

	want := []gate.Elimination{
		{IntentID: "intent:g1", Reason: gate.ReasonConstraintViolation},
		{IntentID: "intent:g3", Reason: gate.ReasonExclusiveKeyConflict},
	}
	if diff := cmp.Diff(want, res.Eliminated); diff != "" {
		t.Fatalf("eliminated mismatch (-want +got):\n%s", diff)
	}
	if len(res.SurvivingIntents) != 1 || res.SurvivingIntents[0].ID != "intent:g2" {
		t.Fatalf("expected intent:g2 to survive, got %+v", res.SurvivingIntents)
	}
}

func TestTickMalformedGoalSurfacesFailure(t *testing.T) {
	res := Tick([]goal.Goal{active("g1", 1), {Status: goal.StatusActive}}, Context{})

	if len(res.Candidates) != 0 || len(res.SurvivingIntents) != 0 {
		t.Fatalf("expected no candidates, got %+v", res)
	}
	if len(res.Failures) != 1 || res.Failures[0].Code != "malformed_goal" {
		t.Fatalf("expected a malformed_goal failure, got %+v", res.Failures)
	}
}

func TestTickDeclarationsDoNotLeakBetweenTicks(t *testing.T) {
	requires := []string{"speak"}
	ctx := Context{Declarations: map[string]Declaration{"intent:g1": {RequiresCapabilities: requires}}}

	res := Tick([]goal.Goal{active("g1", 1)}, ctx)
	res.Candidates[0].RequiresCapabilities[0] = "mutated"

	if requires[0] != "speak" {
		t.Fatal("tick result aliases the declaration")
	}
}

type fixedReader []string

func (r fixedReader) ReadSnapshot(limit int) []string { return r }

func TestDeliberateMemoryReaderWins(t *testing.T) {
	inline := Deliberate("x", nil, Context{})
	if inline.Reason != dialogue.ReasonDiminishingReturns {
		t.Fatalf("expected diminishing_returns, got %s", inline.Reason)
	}

	res := Deliberate("x", nil, Context{Memory: fixedReader{"something else"}})
	if res.Reason != dialogue.ReasonNoFurtherQuestions || res.Iterations != 1 {
		t.Fatalf("expected no_further_questions after 1 iteration, got %s after %d", res.Reason, res.Iterations)
	}
}
