package gate

import (
	"github.com/danielpatrickdp/alive-runtime/internal/intent"
)

// #region reasons

// EliminationReason names the arbitration rule that removed an intent.
type EliminationReason string

const (
	ReasonInvalidShape         EliminationReason = "invalid_intent_shape"   // R1
	ReasonConstraintViolation  EliminationReason = "constraint_violation"   // R2
	ReasonExclusiveKeyConflict EliminationReason = "exclusive_key_conflict" // R3
)

// DenialReason names the authorization rule that denied an intent.
type DenialReason string

const (
	ReasonMissingDeclaration DenialReason = "missing_capability_declaration" // A1
	ReasonMissingCapability  DenialReason = "missing_capability"             // A2
	ReasonDeniedCapability   DenialReason = "denied_capability_present"      // A3
	ReasonPolicyViolation    DenialReason = "policy_violation"               // A3
	ReasonUnauthorizedScope  DenialReason = "unauthorized_scope"             // A4
)

// UnknownIntentID stands in for intents whose id could not be read.
const UnknownIntentID = "(unknown)"

// #endregion reasons

// #region constraints

// Constraints is the explicit-only constraints snapshot. Nothing is inferred: an intent is
// rejected or denied only when its id is listed here.
type Constraints struct {
	RejectedIntentIDs          []string       `json:"rejectedIntentIds,omitempty"`
	DeniedIntentIDs            []string       `json:"deniedIntentIds,omitempty"`
	AllowedAuthorizationScopes []intent.Scope `json:"allowedAuthorizationScopes,omitempty"`
	MaxAuthorizationScope      intent.Scope   `json:"maxAuthorizationScope,omitempty"`
}

// MaxScope returns the widest scope the snapshot allows. MaxAuthorizationScope wins when set;
// otherwise the widest known entry of AllowedAuthorizationScopes; otherwise runtime.
func (c *Constraints) MaxScope() intent.Scope {
	if c == nil {
		return intent.ScopeRuntime
	}
	if _, ok := c.MaxAuthorizationScope.Rank(); ok {
		return c.MaxAuthorizationScope
	}
	max := intent.ScopeRuntime
	maxRank := 0
	for _, s := range c.AllowedAuthorizationScopes {
		if r, ok := s.Rank(); ok && r > maxRank {
			max, maxRank = s, r
		}
	}
	return max
}

func (c *Constraints) rejects(id string) bool {
	return c != nil && contains(c.RejectedIntentIDs, id)
}

func (c *Constraints) denies(id string) bool {
	return c != nil && (contains(c.DeniedIntentIDs, id) || contains(c.RejectedIntentIDs, id))
}

// #endregion constraints

// #region arbitration-io

// ArbitrationInput bundles the read-only snapshots arbitration sees.
type ArbitrationInput struct {
	Candidates  []intent.Candidate
	Constraints *Constraints
}

// Elimination records why an intent did not survive arbitration.
type Elimination struct {
	IntentID string            `json:"intentId"`
	Reason   EliminationReason `json:"reason"`
}

// ArbitrationResult is the output of Arbitrate. SurvivingIntents keeps input order.
type ArbitrationResult struct {
	SurvivingIntents []intent.Candidate `json:"survivingIntents"`
	Eliminated       []Elimination      `json:"eliminated"`
	Failures         []intent.Failure   `json:"failures"`
	InputCount       int                `json:"inputCount"`
}

// #endregion arbitration-io

// #region authorization-io

// AuthorizationInput bundles arbitration survivors with the capability and constraints snapshots.
type AuthorizationInput struct {
	SurvivingIntents []intent.Candidate
	Capabilities     CapabilitySnapshot
	Constraints      *Constraints
}

// Denial records why an intent was not authorized.
type Denial struct {
	IntentID string       `json:"intentId"`
	Reason   DenialReason `json:"reason"`
}

// AuthorizationResult is the output of Authorize. AuthorizedIntents keeps input order.
type AuthorizationResult struct {
	AuthorizedIntents []intent.Candidate `json:"authorizedIntents"`
	Denied            []Denial           `json:"denied"`
	Failures          []intent.Failure   `json:"failures"`
}

// #endregion authorization-io

// #region helpers
func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// #endregion helpers
