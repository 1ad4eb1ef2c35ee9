package memory

import (
	"math"
	"sort"
	"time"
)

// #region types

// RecallItem is anything that can be recalled with a confidence and a reinforcement time.
type RecallItem struct {
	ID               string     `json:"id"`
	Content          any        `json:"content"`
	Confidence       Confidence `json:"confidence"`
	LastReinforcedAt time.Time  `json:"lastReinforcedAt"`
	Provenance       []string   `json:"provenance"`
	ConflictsWith    []string   `json:"conflictsWith,omitempty"`
}

// RankedRecall is a scored recall result. Uncertainty is always 1 - Confidence.
type RankedRecall struct {
	ID          string   `json:"id"`
	Content     any      `json:"content"`
	Score       float64  `json:"score"`
	Confidence  float64  `json:"confidence"`
	Uncertainty float64  `json:"uncertainty"`
	Conflicts   []string `json:"conflicts"`
	Provenance  []string `json:"provenance"`
}

// RecallWeights blend confidence and recency into a score.
type RecallWeights struct {
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Recency    float64 `json:"recency" yaml:"recency"`
}

// RecallOptions configures one ranking. Now is required; zero MaxResults, Weights and
// HalfLife take the defaults.
type RecallOptions struct {
	Now        time.Time      `json:"now" yaml:"-"`
	MaxResults int            `json:"maxResults" yaml:"max_results"`
	Weights    *RecallWeights `json:"weights,omitempty" yaml:"weights"`
	HalfLife   time.Duration  `json:"halfLife" yaml:"half_life"`
}

const (
	defaultMaxResults = 10
	defaultHalfLife   = 24 * time.Hour
)

// DefaultRecallWeights favors confidence over recency.
func DefaultRecallWeights() RecallWeights {
	return RecallWeights{Confidence: 0.7, Recency: 0.3}
}

// #endregion types

// #region rank

// RankRecall scores items by weighted confidence and half-life recency, sorts them by score
// (stable on ties) and keeps the top MaxResults.
func RankRecall(items []RecallItem, opts RecallOptions) []RankedRecall {
	maxResults := orInt(opts.MaxResults, defaultMaxResults)
	halfLife := orDuration(opts.HalfLife, defaultHalfLife)
	weights := DefaultRecallWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	ranked := make([]RankedRecall, 0, len(items))
	for _, item := range items {
		conf := clamp01(item.Confidence.Value)
		score := weights.Confidence*conf + weights.Recency*recency(item.LastReinforcedAt, opts.Now, halfLife)

		conflicts := item.ConflictsWith
		if conflicts == nil {
			conflicts = []string{}
		}
		ranked = append(ranked, RankedRecall{
			ID:          item.ID,
			Content:     item.Content,
			Score:       clamp01(score),
			Confidence:  conf,
			Uncertainty: clamp01(1 - conf),
			Conflicts:   conflicts,
			Provenance:  item.Provenance,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	return ranked
}

// recency halves every halfLife. Unset or future reinforcement times score 0.
func recency(lastAt, now time.Time, halfLife time.Duration) float64 {
	if lastAt.IsZero() || lastAt.After(now) {
		return 0
	}
	age := now.Sub(lastAt)
	return clamp01(math.Exp2(-float64(age) / float64(halfLife)))
}

// #endregion rank
