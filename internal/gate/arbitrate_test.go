package gate

import (
	"testing"

	"github.com/danielpatrickdp/alive-runtime/internal/intent"
	"github.com/google/go-cmp/cmp"
)

func makeIntent(id string) intent.Candidate {
	return intent.Candidate{
		ID:       id,
		Source:   intent.SourceGoalDriven,
		Priority: 50,
		Payload:  map[string]any{"kind": "pursue_goal"},
	}
}

func ids(cs []intent.Candidate) []string {
	out := []string{}
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestArbitrateSurvivesWithoutConstraints(t *testing.T) {
	res := Arbitrate(ArbitrationInput{Candidates: []intent.Candidate{makeIntent("a"), makeIntent("b")}})

	if diff := cmp.Diff([]string{"a", "b"}, ids(res.SurvivingIntents)); diff != "" {
		t.Fatalf("survivors mismatch (-want +got):\n%s", diff)
	}
	if len(res.Eliminated) != 0 {
		t.Fatalf("expected no eliminations, got %+v", res.Eliminated)
	}
	if res.InputCount != 2 {
		t.Fatalf("expected input count 2, got %d", res.InputCount)
	}
}

func TestArbitrateStructuralValidity(t *testing.T) {
	noSource := makeIntent("no-source")
	noSource.Source = ""
	negative := makeIntent("negative")
	negative.Priority = -1
	noPayload := makeIntent("no-payload")
	noPayload.Payload = nil
	noID := makeIntent("")

	res := Arbitrate(ArbitrationInput{Candidates: []intent.Candidate{noSource, negative, noPayload, noID, makeIntent("ok")}})

	want := []Elimination{
		{IntentID: "no-source", Reason: ReasonInvalidShape},
		{IntentID: "negative", Reason: ReasonInvalidShape},
		{IntentID: "no-payload", Reason: ReasonInvalidShape},
		{IntentID: UnknownIntentID, Reason: ReasonInvalidShape},
	}
	if diff := cmp.Diff(want, res.Eliminated); diff != "" {
		t.Fatalf("eliminations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ok"}, ids(res.SurvivingIntents)); diff != "" {
		t.Fatalf("survivors mismatch (-want +got):\n%s", diff)
	}
}

func TestArbitrateExplicitRejectionOnly(t *testing.T) {
	cons := &Constraints{
		RejectedIntentIDs: []string{"b"},
		DeniedIntentIDs:   []string{"c"}, // authorization-only list, not an arbitration signal
	}
	res := Arbitrate(ArbitrationInput{
		Candidates:  []intent.Candidate{makeIntent("a"), makeIntent("b"), makeIntent("c")},
		Constraints: cons,
	})

	if diff := cmp.Diff([]string{"a", "c"}, ids(res.SurvivingIntents)); diff != "" {
		t.Fatalf("survivors mismatch (-want +got):\n%s", diff)
	}
	if len(res.Eliminated) != 1 || res.Eliminated[0].Reason != ReasonConstraintViolation {
		t.Fatalf("expected one constraint violation, got %+v", res.Eliminated)
	}
}

func TestArbitrateExclusivityKeepsFirst(t *testing.T) {
	a := makeIntent("a")
	a.ExclusiveKey = "speaker"
	b := makeIntent("b")
	b.ExclusiveKey = "speaker"
	c := makeIntent("c")
	c.ExclusiveKey = "screen"
	d := makeIntent("d")
	d.ExclusiveKey = "speaker"

	res := Arbitrate(ArbitrationInput{Candidates: []intent.Candidate{a, b, c, d}})

	if diff := cmp.Diff([]string{"a", "c"}, ids(res.SurvivingIntents)); diff != "" {
		t.Fatalf("survivors mismatch (-want +got):\n%s", diff)
	}
	for _, e := range res.Eliminated {
		if e.Reason != ReasonExclusiveKeyConflict {
			t.Errorf("unexpected reason %s for %s", e.Reason, e.IntentID)
		}
	}
}

func TestArbitrateRejectedIntentDoesNotClaimKey(t *testing.T) {
	a := makeIntent("a")
	a.ExclusiveKey = "k"
	b := makeIntent("b")
	b.ExclusiveKey = "k"

	res := Arbitrate(ArbitrationInput{
		Candidates:  []intent.Candidate{a, b},
		Constraints: &Constraints{RejectedIntentIDs: []string{"a"}},
	})

	if diff := cmp.Diff([]string{"b"}, ids(res.SurvivingIntents)); diff != "" {
		t.Fatalf("survivors mismatch (-want +got):\n%s", diff)
	}
}

func TestArbitrateOrderPreservation(t *testing.T) {
	var in []intent.Candidate
	for i, id := range []string{"z", "y", "x", "w", "v", "u"} {
		c := makeIntent(id)
		c.Priority = i * 10
		if i%2 == 1 {
			c.ExclusiveKey = "shared"
		}
		in = append(in, c)
	}

	res := Arbitrate(ArbitrationInput{Candidates: in})

	if diff := cmp.Diff([]string{"z", "y", "x", "v"}, ids(res.SurvivingIntents)); diff != "" {
		t.Fatalf("survivors mismatch (-want +got):\n%s", diff)
	}
}
