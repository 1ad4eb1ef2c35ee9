package eval

import (
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/intent"
	"github.com/danielpatrickdp/alive-runtime/internal/memory"
)

func candidate(id, key string) intent.Candidate {
	return intent.Candidate{
		ID:                   id,
		Source:               intent.SourceGoalDriven,
		Payload:              map[string]any{},
		ExclusiveKey:         key,
		RequiresCapabilities: []string{"speak"},
	}
}

func TestCheckTickPassesOnRealPipeline(t *testing.T) {
	cands := []intent.Candidate{candidate("a", "k"), candidate("b", "k"), candidate("c", ""), {ID: "d", Source: intent.SourceGoalDriven, Payload: map[string]any{}}}
	arb := gate.Arbitrate(gate.ArbitrationInput{Candidates: cands})
	auth := gate.Authorize(gate.AuthorizationInput{
		SurvivingIntents: arb.SurvivingIntents,
		Capabilities:     gate.CapabilityIDList{"speak"},
	})

	result := CheckTick(cands, arb, auth)
	if !result.Passed {
		t.Fatalf("expected pass, got fail: %s", result.Reason)
	}
	if len(result.Metrics) != 5 {
		t.Fatalf("expected 5 metrics, got %d", len(result.Metrics))
	}
}

func TestCheckTickFailsOnReorderedSurvivors(t *testing.T) {
	cands := []intent.Candidate{candidate("a", ""), candidate("b", "")}
	arb := gate.ArbitrationResult{SurvivingIntents: []intent.Candidate{cands[1], cands[0]}}
	auth := gate.AuthorizationResult{AuthorizedIntents: arb.SurvivingIntents}

	result := CheckTick(cands, arb, auth)
	if result.Passed {
		t.Fatal("expected fail on reordered survivors")
	}
	if !strings.Contains(result.Reason, "2 checks") {
		t.Fatalf("expected survivor and authorized order failures, got %q", result.Reason)
	}
}

func TestCheckTickFailsOnSharedExclusiveKey(t *testing.T) {
	cands := []intent.Candidate{candidate("a", "k"), candidate("b", "k")}
	arb := gate.ArbitrationResult{SurvivingIntents: cands}
	auth := gate.AuthorizationResult{AuthorizedIntents: cands}

	result := CheckTick(cands, arb, auth)
	if result.Passed {
		t.Fatal("expected fail on duplicate exclusive key")
	}
	if !strings.Contains(result.Reason, "exclusive keys") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestCheckTickFailsOnLostCandidate(t *testing.T) {
	cands := []intent.Candidate{candidate("a", ""), candidate("b", "")}
	arb := gate.ArbitrationResult{SurvivingIntents: cands[:1]}
	auth := gate.AuthorizationResult{AuthorizedIntents: cands[:1]}

	if result := CheckTick(cands, arb, auth); result.Passed {
		t.Fatal("expected fail when a candidate is neither surviving nor eliminated")
	}
}

func TestCheckDeliberation(t *testing.T) {
	cfg := dialogue.DefaultConfig()
	res := dialogue.Run(dialogue.Request{Trigger: "x"}, cfg)
	if result := CheckDeliberation(res, cfg); !result.Passed {
		t.Fatalf("expected pass, got fail: %s", result.Reason)
	}

	res.Trace = make([]dialogue.TraceEntry, 50)
	res.Reason = ""
	result := CheckDeliberation(res, cfg)
	if result.Passed {
		t.Fatal("expected fail on oversized trace")
	}
	if !strings.HasPrefix(result.Reason, "eval failed: 2 checks") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestCheckLongTerm(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lt := memory.LongTermState{Entries: []memory.LongTermEntry{
		{ID: "fresh", LastSeen: now.Add(-time.Hour)},
		{ID: "old-but-protected", LastSeen: now.Add(-200 * 24 * time.Hour), Protected: true},
	}}
	if result := CheckLongTerm(lt, memory.LongTermOptions{}, now); !result.Passed {
		t.Fatalf("expected pass, got fail: %s", result.Reason)
	}

	lt.Entries = append(lt.Entries, memory.LongTermEntry{ID: "stale", LastSeen: now.Add(-200 * 24 * time.Hour)})
	if result := CheckLongTerm(lt, memory.LongTermOptions{MaxEntries: 2}, now); result.Passed {
		t.Fatal("expected fail on stale entry over the cap")
	}
}
