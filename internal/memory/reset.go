package memory

import "time"

// #region types

// ResetLevel is how drastic a recommended reset is.
type ResetLevel string

const (
	ResetNone ResetLevel = "none"
	ResetSoft ResetLevel = "soft"
	ResetHard ResetLevel = "hard"
)

// ResetReason names one reset signal.
type ResetReason string

const (
	ReasonPersistentContradictions ResetReason = "persistent_contradictions"
	ReasonAssumptionChurn          ResetReason = "assumption_churn"
	ReasonConfidenceCollapse       ResetReason = "confidence_collapse"
	ReasonMemoryStagnation         ResetReason = "memory_stagnation"
	ReasonLongTermPollution        ResetReason = "long_term_pollution"
)

// ResetEvidence is one triggered signal with its severity in [0,1].
type ResetEvidence struct {
	Reason  ResetReason    `json:"reason"`
	Score   float64        `json:"score"`
	Details map[string]any `json:"details"`
}

// ResetRecommendation is advisory only; nothing acts on it here.
type ResetRecommendation struct {
	Level      ResetLevel      `json:"level"`
	Confidence float64         `json:"confidence"`
	Reasons    []ResetReason   `json:"reasons"`
	Evidence   []ResetEvidence `json:"evidence"`
}

// WorkingSignals summarizes working memory for the reset evaluator.
type WorkingSignals struct {
	ContradictionCount     int        `json:"contradictionCount"`
	ContradictionRate      float64    `json:"contradictionRate"`
	AssumptionCount        int        `json:"assumptionCount"`
	AssumptionTurnoverRate float64    `json:"assumptionTurnoverRate"`
	MeanConfidence         Confidence `json:"meanConfidence"`
}

// StreamSignals summarizes the stream for the reset evaluator. EventRate is events per minute.
type StreamSignals struct {
	EventRate    float64   `json:"eventRate"`
	LastChangeAt time.Time `json:"lastChangeAt"`
}

// LongTermSignals summarizes long-term memory for the reset evaluator.
type LongTermSignals struct {
	ItemCount      int        `json:"itemCount"`
	WeakItemRatio  float64    `json:"weakItemRatio"`
	ConflictRatio  float64    `json:"conflictRatio"`
	MeanConfidence Confidence `json:"meanConfidence"`
}

// ResetInputs is everything RecommendReset looks at. Nil Thresholds use the defaults.
type ResetInputs struct {
	Now        time.Time        `json:"now"`
	Working    WorkingSignals   `json:"working"`
	Stream     StreamSignals    `json:"stream"`
	LongTerm   LongTermSignals  `json:"longTerm"`
	Thresholds *ResetThresholds `json:"thresholds,omitempty"`
}

// ResetThresholds holds one threshold group per signal. Non-positive fields take defaults.
type ResetThresholds struct {
	PersistentContradictions struct {
		MinCount int     `json:"minCount" yaml:"min_count"`
		MinRate  float64 `json:"minRate" yaml:"min_rate"`
	} `json:"persistentContradictions" yaml:"persistent_contradictions"`
	AssumptionChurn struct {
		MinTurnoverRate float64 `json:"minTurnoverRate" yaml:"min_turnover_rate"`
	} `json:"assumptionChurn" yaml:"assumption_churn"`
	ConfidenceCollapse struct {
		MaxMeanConfidence float64 `json:"maxMeanConfidence" yaml:"max_mean_confidence"`
	} `json:"confidenceCollapse" yaml:"confidence_collapse"`
	MemoryStagnation struct {
		MinEventRate float64       `json:"minEventRate" yaml:"min_event_rate"`
		MaxIdle      time.Duration `json:"maxIdle" yaml:"max_idle"`
	} `json:"memoryStagnation" yaml:"memory_stagnation"`
	LongTermPollution struct {
		MaxWeakRatio     float64 `json:"maxWeakRatio" yaml:"max_weak_ratio"`
		MaxConflictRatio float64 `json:"maxConflictRatio" yaml:"max_conflict_ratio"`
	} `json:"longTermPollution" yaml:"long_term_pollution"`
}

// DefaultResetThresholds returns the stock thresholds.
func DefaultResetThresholds() ResetThresholds {
	var t ResetThresholds
	t.PersistentContradictions.MinCount = 3
	t.PersistentContradictions.MinRate = 0.05
	t.AssumptionChurn.MinTurnoverRate = 0.2
	t.ConfidenceCollapse.MaxMeanConfidence = 0.35
	t.MemoryStagnation.MinEventRate = 0.1
	t.MemoryStagnation.MaxIdle = 5 * time.Minute
	t.LongTermPollution.MaxWeakRatio = 0.4
	t.LongTermPollution.MaxConflictRatio = 0.25
	return t
}

func (t *ResetThresholds) withDefaults() ResetThresholds {
	d := DefaultResetThresholds()
	if t == nil {
		return d
	}
	out := *t
	out.PersistentContradictions.MinCount = orInt(out.PersistentContradictions.MinCount, d.PersistentContradictions.MinCount)
	out.PersistentContradictions.MinRate = orFloat(out.PersistentContradictions.MinRate, d.PersistentContradictions.MinRate)
	out.AssumptionChurn.MinTurnoverRate = orFloat(out.AssumptionChurn.MinTurnoverRate, d.AssumptionChurn.MinTurnoverRate)
	out.ConfidenceCollapse.MaxMeanConfidence = orFloat(out.ConfidenceCollapse.MaxMeanConfidence, d.ConfidenceCollapse.MaxMeanConfidence)
	out.MemoryStagnation.MinEventRate = orFloat(out.MemoryStagnation.MinEventRate, d.MemoryStagnation.MinEventRate)
	out.MemoryStagnation.MaxIdle = orDuration(out.MemoryStagnation.MaxIdle, d.MemoryStagnation.MaxIdle)
	out.LongTermPollution.MaxWeakRatio = orFloat(out.LongTermPollution.MaxWeakRatio, d.LongTermPollution.MaxWeakRatio)
	out.LongTermPollution.MaxConflictRatio = orFloat(out.LongTermPollution.MaxConflictRatio, d.LongTermPollution.MaxConflictRatio)
	return out
}

// hardScore is the severity at which a hard-capable signal escalates the level.
const hardScore = 0.8

// #endregion types

// #region recommend

// RecommendReset evaluates the five reset signals independently. Confidence is the mean
// score of the triggered signals. The level is hard when confidence collapse or long-term
// pollution scores at least 0.8, soft when anything triggered, none otherwise.
// It reads in only and never acts.
func RecommendReset(in ResetInputs) ResetRecommendation {
	t := in.Thresholds.withDefaults()
	var evidence []ResetEvidence

	{
		pc := t.PersistentContradictions
		count := float64(in.Working.ContradictionCount)
		score := clamp01(min(count/float64(pc.MinCount), in.Working.ContradictionRate/pc.MinRate))
		if in.Working.ContradictionCount >= pc.MinCount && in.Working.ContradictionRate >= pc.MinRate {
			evidence = append(evidence, ResetEvidence{
				Reason: ReasonPersistentContradictions,
				Score:  score,
				Details: map[string]any{
					"contradictionCount": in.Working.ContradictionCount,
					"contradictionRate":  in.Working.ContradictionRate,
				},
			})
		}
	}

	{
		rate := in.Working.AssumptionTurnoverRate
		if rate >= t.AssumptionChurn.MinTurnoverRate {
			evidence = append(evidence, ResetEvidence{
				Reason:  ReasonAssumptionChurn,
				Score:   clamp01(rate / t.AssumptionChurn.MinTurnoverRate),
				Details: map[string]any{"assumptionTurnoverRate": rate},
			})
		}
	}

	{
		mean := in.Working.MeanConfidence.Value
		if mean <= t.ConfidenceCollapse.MaxMeanConfidence {
			evidence = append(evidence, ResetEvidence{
				Reason:  ReasonConfidenceCollapse,
				Score:   clamp01(1 - mean),
				Details: map[string]any{"meanConfidence": mean},
			})
		}
	}

	{
		ms := t.MemoryStagnation
		idle := in.Now.Sub(in.Stream.LastChangeAt)
		score := clamp01(max(in.Stream.EventRate/ms.MinEventRate, float64(idle)/float64(ms.MaxIdle)))
		if in.Stream.EventRate >= ms.MinEventRate && idle >= ms.MaxIdle {
			evidence = append(evidence, ResetEvidence{
				Reason: ReasonMemoryStagnation,
				Score:  score,
				Details: map[string]any{
					"eventRate": in.Stream.EventRate,
					"idle":      idle.String(),
				},
			})
		}
	}

	{
		lp := t.LongTermPollution
		weak, conflict := in.LongTerm.WeakItemRatio, in.LongTerm.ConflictRatio
		score := clamp01(max(weak/lp.MaxWeakRatio, conflict/lp.MaxConflictRatio))
		if weak >= lp.MaxWeakRatio || conflict >= lp.MaxConflictRatio {
			evidence = append(evidence, ResetEvidence{
				Reason: ReasonLongTermPollution,
				Score:  score,
				Details: map[string]any{
					"weakItemRatio": weak,
					"conflictRatio": conflict,
				},
			})
		}
	}

	if len(evidence) == 0 {
		return ResetRecommendation{
			Level:    ResetNone,
			Reasons:  []ResetReason{},
			Evidence: []ResetEvidence{},
		}
	}

	level := ResetSoft
	sum := 0.0
	reasons := make([]ResetReason, 0, len(evidence))
	for _, e := range evidence {
		sum += e.Score
		reasons = append(reasons, e.Reason)
		if (e.Reason == ReasonConfidenceCollapse || e.Reason == ReasonLongTermPollution) && e.Score >= hardScore {
			level = ResetHard
		}
	}

	return ResetRecommendation{
		Level:      level,
		Confidence: clamp01(sum / float64(len(evidence))),
		Reasons:    reasons,
		Evidence:   evidence,
	}
}

// #endregion recommend

func orFloat(v, def float64) float64 {
	if !(v > 0) {
		return def
	}
	return v
}
