package dialogue

// #region reason

// TerminationReason names the condition that ended a dialogue run.
type TerminationReason string

const (
	ReasonMaxIterations      TerminationReason = "max_iterations"
	ReasonMaxDepth           TerminationReason = "max_depth"
	ReasonDiminishingReturns TerminationReason = "diminishing_returns"
	ReasonContradictionStall TerminationReason = "contradiction_stall"
	ReasonNoFurtherQuestions TerminationReason = "no_further_questions"
)

// #endregion reason

// #region config

// TerminationConfig bounds a dialogue run.
type TerminationConfig struct {
	MaxIterations               int     `json:"maxIterations" yaml:"max_iterations"`
	MaxDepth                    int     `json:"maxDepth" yaml:"max_depth"`
	DiminishingReturnsThreshold float64 `json:"diminishingReturnsThreshold" yaml:"diminishing_returns_threshold"` // [0, 1]
	ContradictionStallLimit     int     `json:"contradictionStallLimit" yaml:"contradiction_stall_limit"`
}

// DefaultTerminationConfig returns the stock bounds.
func DefaultTerminationConfig() TerminationConfig {
	return TerminationConfig{
		MaxIterations:               12,
		MaxDepth:                    4,
		DiminishingReturnsThreshold: 0.02,
		ContradictionStallLimit:     3,
	}
}

// withDefaults fills unset (non-positive) fields from DefaultTerminationConfig.
func (c TerminationConfig) withDefaults() TerminationConfig {
	d := DefaultTerminationConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if !(c.DiminishingReturnsThreshold > 0) {
		c.DiminishingReturnsThreshold = d.DiminishingReturnsThreshold
	}
	if c.ContradictionStallLimit <= 0 {
		c.ContradictionStallLimit = d.ContradictionStallLimit
	}
	return c
}

// #endregion config

// #region state

// TerminationState is threaded through one run. Iterations counts finished iterations,
// LastBestScore is the best total seen before the iteration being evaluated.
type TerminationState struct {
	Iterations              int     `json:"iterations"`
	Depth                   int     `json:"depth"`
	LastBestScore           float64 `json:"lastBestScore"`
	ContradictionStallCount int     `json:"contradictionStallCount"`
}

// #endregion state

// #region should-terminate

// contradictionHigh is the contradiction score at which an iteration counts as stalled.
const contradictionHigh = 0.6

// ShouldTerminate evaluates the five termination conditions in order and returns the first
// that holds. state.Iterations must already include the iteration being evaluated. The
// contradiction stall counter is updated in place when the first three conditions pass.
//
// Diminishing returns only fires on a non-negative improvement; a regressing score is left
// to the stall, depth and iteration limits.
func ShouldTerminate(
	config TerminationConfig,
	state *TerminationState,
	bestScore float64,
	bestContradiction float64,
	hasNextQuestion bool,
) (TerminationReason, bool) {
	if state.Iterations >= config.MaxIterations {
		return ReasonMaxIterations, true
	}
	if state.Depth >= config.MaxDepth {
		return ReasonMaxDepth, true
	}

	improvement := bestScore - state.LastBestScore
	if state.Iterations > 1 && improvement >= 0 && improvement < config.DiminishingReturnsThreshold {
		return ReasonDiminishingReturns, true
	}

	if bestContradiction >= contradictionHigh {
		state.ContradictionStallCount++
	} else {
		state.ContradictionStallCount = 0
	}
	if state.ContradictionStallCount >= config.ContradictionStallLimit {
		return ReasonContradictionStall, true
	}

	if !hasNextQuestion {
		return ReasonNoFurtherQuestions, true
	}

	return "", false
}

// #endregion should-terminate
