package dialogue

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreThoughtContradiction(t *testing.T) {
	s := ScoreThought("Should we act? We should not act.", "should we act", nil, nil)

	if !approx(s.Coherence, 1) {
		t.Errorf("coherence: want 1, got %v", s.Coherence)
	}
	if !approx(s.Novelty, 0.7) {
		t.Errorf("novelty: want 0.7, got %v", s.Novelty)
	}
	if s.Contradiction != 1 {
		t.Errorf("contradiction: want 1, got %v", s.Contradiction)
	}
	if !approx(s.Total, 0.395) {
		t.Errorf("total: want 0.395, got %v", s.Total)
	}
}

func TestScoreThoughtRepeatAndEcho(t *testing.T) {
	s := ScoreThought(
		"Propose a compressed pattern",
		"What is the pattern?",
		[]string{"memory line"},
		[]string{"Propose a compressed pattern, not raw speculation."},
	)

	if !approx(s.Coherence, 1.0/6) {
		t.Errorf("coherence: want 1/6, got %v", s.Coherence)
	}
	if !approx(s.Novelty, 0.3) {
		t.Errorf("novelty: want 0.3, got %v", s.Novelty)
	}
	if s.Contradiction != 0.2 {
		t.Errorf("contradiction: want baseline 0.2, got %v", s.Contradiction)
	}
	if !approx(s.Total, 0.55/6+0.105-0.08) {
		t.Errorf("total: got %v", s.Total)
	}
}

func TestScoreThoughtEchoOfMemory(t *testing.T) {
	s := ScoreThought("only compressed", "q", []string{"Only compressed patterns survive."}, nil)
	if !approx(s.Novelty, 0.7) {
		t.Fatalf("verbatim echo should lose the memory component, got %v", s.Novelty)
	}
}

func TestScoreThoughtNegationAlone(t *testing.T) {
	for _, text := range []string{"You shouldn't do that", "You should do that", "Do not"} {
		s := ScoreThought(text, "q", nil, nil)
		if s.Contradiction != 0.2 {
			t.Errorf("%q: expected baseline contradiction, got %v", text, s.Contradiction)
		}
	}
	s := ScoreThought("You should rest but you shouldn’t stop", "q", nil, nil)
	if s.Contradiction != 1 {
		t.Errorf("expected typographic apostrophe to count as negation, got %v", s.Contradiction)
	}
}

func TestScoreThoughtBounds(t *testing.T) {
	texts := []string{"", "a b c", "should should not should", "What is the best internal interpretation of x x x x x x"}
	for _, text := range texts {
		s := ScoreThought(text, "What is the best internal interpretation of x?", []string{"x"}, []string{"y"})
		for name, v := range map[string]float64{"coherence": s.Coherence, "novelty": s.Novelty, "contradiction": s.Contradiction, "total": s.Total} {
			if v < 0 || v > 1 {
				t.Errorf("%q: %s out of range: %v", text, name, v)
			}
		}
	}
}

func TestBestThoughtPrefersFirstOnTie(t *testing.T) {
	thoughts := []Thought{
		{ID: "a", Scores: Scores{Total: 0.4}},
		{ID: "b", Scores: Scores{Total: 0.6}},
		{ID: "c", Scores: Scores{Total: 0.6}},
	}
	if got := bestThought(thoughts); got == nil || got.ID != "b" {
		t.Fatalf("expected b, got %+v", got)
	}
	if bestThought(nil) != nil {
		t.Fatal("expected nil for no thoughts")
	}
}
