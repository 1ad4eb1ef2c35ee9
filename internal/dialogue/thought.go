package dialogue

import (
	"regexp"
	"strings"
)

// #region types

// Scores are the heuristic ratings of one thought. Contradiction acts as a penalty.
type Scores struct {
	Coherence     float64 `json:"coherence"`
	Novelty       float64 `json:"novelty"`
	Contradiction float64 `json:"contradiction"`
	Total         float64 `json:"total"`
}

// Thought is a scored candidate answer, alive for one iteration.
type Thought struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Scores Scores `json:"scores"`
}

// #endregion types

// #region weights
const (
	coherenceWeight     = 0.55
	noveltyWeight       = 0.35
	contradictionWeight = 0.4

	repeatWeight = 0.7
	echoWeight   = 0.3

	// coherenceFloor keeps very short questions from inflating coherence.
	coherenceFloor = 6

	contradictionBaseline = 0.2
)

// #endregion weights

// #region score

var (
	nonWord     = regexp.MustCompile(`\W+`)
	modalShould = regexp.MustCompile(`(?i)\bshould\b`)
	modalNot    = regexp.MustCompile(`(?i)\bshould\s+not\b|\bshouldn['’]t\b`)
)

// ScoreThought rates a thought against the current question, the memory snapshot and the
// best thoughts of earlier iterations. Deterministic; no model calls.
func ScoreThought(text, question string, snapshot, prior []string) Scores {
	qTokens := make(map[string]struct{})
	for _, tok := range tokens(question) {
		qTokens[tok] = struct{}{}
	}
	overlap := 0
	for _, tok := range tokens(text) {
		if _, ok := qTokens[tok]; ok {
			overlap++
		}
	}
	coherence := clamp01(float64(overlap) / float64(max(coherenceFloor, len(qTokens))))

	lowerText := strings.ToLower(text)

	notRepeat := 1.0
	if allPrior := strings.Join(prior, " "); allPrior != "" && strings.Contains(strings.ToLower(allPrior), lowerText) {
		notRepeat = 0
	}
	notEcho := 0.0
	if memText := strings.Join(snapshot, " "); memText != "" && !strings.Contains(strings.ToLower(memText), lowerText) {
		notEcho = 1
	}
	novelty := clamp01(repeatWeight*notRepeat + echoWeight*notEcho)

	contradiction := contradictionBaseline
	if modalShould.MatchString(text) && modalNot.MatchString(text) {
		contradiction = 1
	}

	total := clamp01(coherenceWeight*coherence + noveltyWeight*novelty - contradictionWeight*contradiction)
	return Scores{
		Coherence:     coherence,
		Novelty:       novelty,
		Contradiction: contradiction,
		Total:         total,
	}
}

// #endregion score

// #region helpers
func tokens(s string) []string {
	parts := nonWord.Split(strings.ToLower(s), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// bestThought returns the first thought with the highest total, or nil.
func bestThought(thoughts []Thought) *Thought {
	var best *Thought
	for i := range thoughts {
		if best == nil || thoughts[i].Scores.Total > best.Scores.Total {
			best = &thoughts[i]
		}
	}
	return best
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
