package pipeline

import (
	"time"

	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
	"github.com/danielpatrickdp/alive-runtime/internal/eval"
	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/intent"
	"github.com/danielpatrickdp/alive-runtime/internal/memory"
)

// #region declaration

// Declaration attaches authorization metadata to a generated intent. Generation itself never
// declares capabilities, so without one every intent is denied at authorization.
type Declaration struct {
	RequiresCapabilities []string     `json:"requiresCapabilities,omitempty" yaml:"requires_capabilities"`
	DeniesCapabilities   []string     `json:"deniesCapabilities,omitempty" yaml:"denies_capabilities"`
	AuthorizationScope   intent.Scope `json:"authorizationScope,omitempty" yaml:"authorization_scope"`
	ExclusiveKey         string       `json:"exclusiveKey,omitempty" yaml:"exclusive_key"`
}

// #endregion declaration

// #region context

// Context is the explicit, read-only input of one tick or deliberation.
type Context struct {
	Constraints  *gate.Constraints
	Capabilities gate.CapabilitySnapshot
	// Declarations is keyed by intent id ("intent:<goal id>").
	Declarations map[string]Declaration
	Dialogue     dialogue.Config
	Specialists  []dialogue.Specialist
	// Memory, when set, replaces the inline snapshot passed to Deliberate.
	Memory dialogue.SnapshotReader
}

// #endregion context

// #region tick-result

// TickResult is the serializable outcome of one tick. Failures concatenate generation,
// arbitration and authorization failures in that order.
type TickResult struct {
	Candidates        []intent.Candidate `json:"candidates"`
	SurvivingIntents  []intent.Candidate `json:"survivingIntents"`
	Eliminated        []gate.Elimination `json:"eliminated"`
	AuthorizedIntents []intent.Candidate `json:"authorizedIntents"`
	Denied            []gate.Denial      `json:"denied"`
	Failures          []intent.Failure   `json:"failures"`
	InputCount        int                `json:"inputCount"`
}

// #endregion tick-result

// #region reports

// TickReport is what Runtime.RunTick returns.
type TickReport struct {
	TickID string          `json:"tickId"`
	Result TickResult      `json:"result"`
	Eval   eval.EvalResult `json:"eval"`
}

// ThinkReport is what Runtime.Think returns.
type ThinkReport struct {
	DeliberationID string          `json:"deliberationId"`
	Result         dialogue.Result `json:"result"`
	Eval           eval.EvalResult `json:"eval"`
}

// MemoryReport bundles derived views with recall ranking and the reset recommendation.
type MemoryReport struct {
	Views     memory.Views               `json:"views"`
	Recall    []memory.RankedRecall      `json:"recall"`
	Reset     memory.ResetRecommendation `json:"reset"`
	LongTerm  eval.EvalResult            `json:"longTermEval"`
	DerivedAt time.Time                  `json:"derivedAt"`
}

// #endregion reports
