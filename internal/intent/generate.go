package intent

import (
	"math"

	"github.com/danielpatrickdp/alive-runtime/internal/goal"
)

// #region result

// GenerationResult carries the candidates and any failure artifacts from one generation pass.
// When Failures is non-empty, Candidates is empty.
type GenerationResult struct {
	Candidates []Candidate `json:"candidates"`
	Failures   []Failure   `json:"failures"`
}

// #endregion result

// #region generate

// Generate translates goals into candidate intents: exactly one per active goal, in input
// order. A malformed goal anywhere in the list yields no candidates at all and a single
// malformed_goal failure.
func Generate(goals []goal.Goal) GenerationResult {
	result := GenerationResult{
		Candidates: []Candidate{},
		Failures:   []Failure{},
	}

	candidates := make([]Candidate, 0, len(goals))
	for i, g := range goals {
		if g.ID == "" {
			result.Failures = append(result.Failures, Failure{
				Subsystem:   SubsystemGeneration,
				Code:        "malformed_goal",
				Message:     "Goal set contained a malformed goal; produced no candidates",
				Details:     map[string]any{"index": i},
				Recoverable: true,
			})
			return result
		}

		if g.Status != goal.StatusActive {
			continue
		}

		confidence := normalizeStrength(g.Strength.Current)
		candidates = append(candidates, Candidate{
			ID:         "intent:" + g.ID,
			Source:     SourceGoalDriven,
			Confidence: confidence,
			Priority:   int(math.Floor(confidence * 100)),
			Payload: map[string]any{
				"kind":   "pursue_goal",
				"goalId": g.ID,
			},
			Rationale: "Mechanical translation: active goal -> pursue_goal intent",
		})
	}

	result.Candidates = candidates
	return result
}

// #endregion generate

// #region helpers

// normalizeStrength maps non-finite values to 0 and clamps to [0, 1].
func normalizeStrength(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
