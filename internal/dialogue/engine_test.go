package dialogue

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunTerminatesWithinBounds(t *testing.T) {
	cfg := Config{
		Termination: TerminationConfig{
			MaxIterations:               5,
			MaxDepth:                    2,
			DiminishingReturnsThreshold: 0.0001,
			ContradictionStallLimit:     2,
		},
		MaxTraceEntries:      10,
		MaxPatternCandidates: 2,
	}
	res := Run(Request{
		Trigger:        "User asked for a general summary.",
		MemorySnapshot: []string{"Only compressed patterns survive.", "Avoid raw speculation."},
	}, cfg)

	if !res.Terminated {
		t.Fatal("expected terminated")
	}
	if res.Iterations > 6 {
		t.Fatalf("too many iterations: %d", res.Iterations)
	}
	if len(res.Trace) > 10 {
		t.Fatalf("trace too long: %d", len(res.Trace))
	}
	if len(res.PatternCandidates) > 2 {
		t.Fatalf("too many patterns: %d", len(res.PatternCandidates))
	}
}

func TestRunDiminishingReturns(t *testing.T) {
	res := Run(Request{Trigger: "x"}, DefaultConfig())

	if res.Reason != ReasonDiminishingReturns {
		t.Fatalf("expected diminishing_returns, got %s", res.Reason)
	}
	if res.Iterations != 2 || len(res.Trace) != 2 {
		t.Fatalf("expected 2 iterations, got %d (trace %d)", res.Iterations, len(res.Trace))
	}
	if res.Trace[0].Question != "What is the best internal interpretation of: x?" {
		t.Errorf("unexpected first question %q", res.Trace[0].Question)
	}
	if res.Trace[1].Depth != 1 || !strings.HasPrefix(res.Trace[1].Question, "What is the main uncertainty in:") {
		t.Errorf("unexpected second entry %+v", res.Trace[1])
	}

	var ids []string
	for _, p := range res.PatternCandidates {
		ids = append(ids, p.ID)
	}
	if diff := cmp.Diff([]string{"pat_t0_0", "pat_t1_0"}, ids); diff != "" {
		t.Fatalf("pattern ids mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(res.FinalAnswer, `Given "x"`) {
		t.Fatalf("unexpected final answer %q", res.FinalAnswer)
	}
}

func TestRunNoFurtherQuestions(t *testing.T) {
	res := Run(Request{Trigger: "x", MemorySnapshot: []string{"something else"}}, DefaultConfig())

	if res.Reason != ReasonNoFurtherQuestions || res.Iterations != 1 {
		t.Fatalf("expected no_further_questions after 1 iteration, got %s after %d", res.Reason, res.Iterations)
	}
	if len(res.PatternCandidates) != 1 {
		t.Fatalf("expected one pattern, got %d", len(res.PatternCandidates))
	}
	if got := res.PatternCandidates[0].Evidence; len(got) != 2 || got[0] != "x" {
		t.Fatalf("unexpected evidence %v", got)
	}
}

func TestRunLimits(t *testing.T) {
	loose := TerminationConfig{MaxIterations: 100, MaxDepth: 100, ContradictionStallLimit: 100}

	tests := []struct {
		name string
		cfg  Config
		want TerminationReason
		iter int
	}{
		{"max iterations", Config{Termination: TerminationConfig{MaxIterations: 1}}, ReasonMaxIterations, 1},
		{"max depth", Config{Termination: TerminationConfig{MaxDepth: 1}}, ReasonMaxDepth, 2},
		{"trace cap", Config{Termination: loose, MaxTraceEntries: 1}, ReasonMaxIterations, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(Request{Trigger: "x"}, tt.cfg)
			if res.Reason != tt.want || res.Iterations != tt.iter {
				t.Fatalf("want %s after %d, got %s after %d", tt.want, tt.iter, res.Reason, res.Iterations)
			}
			if len(res.Trace) > res.Iterations {
				t.Fatalf("trace longer than iterations: %d", len(res.Trace))
			}
		})
	}
}

func TestRunContradictionStall(t *testing.T) {
	contrarian := NewSpecialist("contrarian", func(string, string, []string) ([]string, error) {
		return []string{"We should act and we should not act"}, nil
	})
	cfg := Config{
		Termination:             TerminationConfig{ContradictionStallLimit: 1},
		MaxThoughtsPerIteration: 1,
	}
	res := Run(Request{Trigger: "act", Specialists: []Specialist{contrarian}}, cfg)

	if res.Reason != ReasonContradictionStall || res.Iterations != 1 {
		t.Fatalf("expected contradiction_stall after 1, got %s after %d", res.Reason, res.Iterations)
	}
	if diff := cmp.Diff([]string{"high contradiction detected"}, res.Trace[0].Notes); diff != "" {
		t.Fatalf("notes mismatch (-want +got):\n%s", diff)
	}
	if len(res.PatternCandidates) != 0 {
		t.Fatalf("contradictory thoughts must not produce patterns")
	}
}

func TestRunSpecialistAdviceComesFirst(t *testing.T) {
	advisor := NewSpecialist("advisor", func(q, trigger string, snapshot []string) ([]string, error) {
		return []string{"  ", "Keep only evidence-backed patterns."}, nil
	})
	res := Run(Request{Trigger: "x", Specialists: []Specialist{advisor}}, Config{MaxThoughtsPerIteration: 1})

	if res.FinalAnswer != "Keep only evidence-backed patterns." {
		t.Fatalf("expected advice as the only thought, got %q", res.FinalAnswer)
	}
}

func TestRunSwallowsFailingSpecialists(t *testing.T) {
	panicky := NewSpecialist("panicky", func(string, string, []string) ([]string, error) {
		panic("boom")
	})
	broken := NewSpecialist("broken", func(string, string, []string) ([]string, error) {
		return []string{"should be ignored"}, errors.New("unavailable")
	})
	res := Run(Request{Trigger: "x", Specialists: []Specialist{panicky, nil, broken}}, Config{MaxThoughtsPerIteration: 1})

	if !res.Terminated {
		t.Fatal("expected terminated")
	}
	if !strings.HasPrefix(res.FinalAnswer, "Given") {
		t.Fatalf("failing specialists should contribute nothing, got %q", res.FinalAnswer)
	}
}

func TestRunSpecialistCannotMutateSnapshot(t *testing.T) {
	snapshot := []string{"original"}
	vandal := NewSpecialist("vandal", func(_, _ string, s []string) ([]string, error) {
		if len(s) > 0 {
			s[0] = "mutated"
		}
		return nil, nil
	})
	Run(Request{Trigger: "x", MemorySnapshot: snapshot, Specialists: []Specialist{vandal}}, DefaultConfig())

	if snapshot[0] != "original" {
		t.Fatalf("caller snapshot was mutated: %v", snapshot)
	}
}

type fixedReader []string

func (r fixedReader) ReadSnapshot(limit int) []string {
	if len(r) > limit {
		return r[:limit]
	}
	return r
}

func TestRunReaderReplacesInlineSnapshot(t *testing.T) {
	var seen []string
	spy := NewSpecialist("spy", func(_, _ string, s []string) ([]string, error) {
		seen = s
		return nil, nil
	})
	Run(Request{
		Trigger:        "x",
		MemorySnapshot: []string{"inline"},
		Reader:         fixedReader{"from reader"},
		Specialists:    []Specialist{spy},
	}, Config{Termination: TerminationConfig{MaxIterations: 1}})

	if diff := cmp.Diff([]string{"from reader"}, seen); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	req := Request{Trigger: "plan the week", MemorySnapshot: []string{"a", "b", "c", "d"}}
	first := Run(req, DefaultConfig())
	second := Run(req, DefaultConfig())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("runs differ (-first +second):\n%s", diff)
	}
}

func TestConfigNormalized(t *testing.T) {
	got := Config{MaxThoughtsPerIteration: 1000, MaxTraceEntries: -1, Termination: TerminationConfig{MaxIterations: 9999}}.Normalized()
	if got.MaxThoughtsPerIteration != HardMaxThoughts || got.MaxTraceEntries != 20 || got.Termination.MaxIterations != HardMaxIterations {
		t.Fatalf("unexpected normalized config %+v", got)
	}
}
