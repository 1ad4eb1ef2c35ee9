package dialogue

import "fmt"

// #region types

// PatternCandidate is a compressed, evidence-backed summary proposed by reflection.
type PatternCandidate struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Evidence   []string `json:"evidence"`
	Confidence float64  `json:"confidence"`
}

// Reflection is the verdict on one iteration's thoughts.
type Reflection struct {
	BestThoughtID        string            `json:"bestThoughtId,omitempty"`
	RevisionNotes        []string          `json:"revisionNotes"`
	ShouldProposePattern bool              `json:"shouldProposePattern"`
	PatternCandidate     *PatternCandidate `json:"patternCandidate,omitempty"`
	NextQuestion         string            `json:"nextQuestion,omitempty"`
}

// #endregion types

// #region thresholds
const (
	lowCoherence        = 0.2
	patternMinTotal     = 0.7
	followUpMaxDepth    = 3
	followUpMaxTotal    = 0.75
	patternTitleRunes   = 48
	patternSummaryRunes = 280
	patternEvidenceMax  = 3
)

// #endregion thresholds

// #region reflect

// Reflect inspects the best thought of an iteration: it notes high contradiction or low
// coherence, proposes a pattern when the thought is strong and consistent, and asks a
// follow-up question while the dialogue is still shallow and the answer is not good enough.
func Reflect(trigger, question string, thoughts []Thought, snapshot []string, depth int) Reflection {
	best := bestThought(thoughts)
	if best == nil {
		return Reflection{RevisionNotes: []string{"no thoughts"}}
	}

	notes := []string{}
	if best.Scores.Contradiction >= contradictionHigh {
		notes = append(notes, "high contradiction detected")
	}
	if best.Scores.Coherence < lowCoherence {
		notes = append(notes, "low coherence with question")
	}

	r := Reflection{
		BestThoughtID:        best.ID,
		RevisionNotes:        notes,
		ShouldProposePattern: best.Scores.Total >= patternMinTotal && best.Scores.Contradiction < contradictionHigh,
	}

	if r.ShouldProposePattern {
		evidence := append([]string{trigger}, snapshot...)
		if len(evidence) > patternEvidenceMax {
			evidence = evidence[:patternEvidenceMax]
		}
		r.PatternCandidate = &PatternCandidate{
			ID:         "pat_" + best.ID,
			Title:      "Pattern: " + truncateRunes(question, patternTitleRunes),
			Summary:    truncateRunes(best.Text, patternSummaryRunes),
			Evidence:   evidence,
			Confidence: clamp01(best.Scores.Total),
		}
	}

	if depth < followUpMaxDepth && best.Scores.Total < followUpMaxTotal {
		r.NextQuestion = fmt.Sprintf("What is the main uncertainty in: %s?", question)
	}

	return r
}

// #endregion reflect

// #region helpers
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// #endregion helpers
