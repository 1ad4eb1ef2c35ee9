package gate

import (
	"github.com/danielpatrickdp/alive-runtime/internal/intent"
)

// #region authorize

// Authorize gates arbitration survivors on declared capabilities, explicit policy and scope.
// Each intent is tested once; the first failing rule denies it:
//
//	A1 the intent declares at least one required capability.
//	A2 every required capability is present in the snapshot.
//	A3 none of its explicitly denied capabilities is present, and policy does not list its id.
//	A4 its scope (runtime when absent) does not exceed the constraints' max scope.
//
// Authorized intents keep their input order.
func Authorize(in AuthorizationInput) AuthorizationResult {
	result := AuthorizationResult{
		AuthorizedIntents: []intent.Candidate{},
		Denied:            []Denial{},
		Failures:          []intent.Failure{},
	}

	maxScope := in.Constraints.MaxScope()

	for _, c := range in.SurvivingIntents {
		if c.ID == "" {
			result.Denied = append(result.Denied, Denial{IntentID: UnknownIntentID, Reason: ReasonMissingDeclaration})
			continue
		}
		if reason, denied := evaluate(c, in.Capabilities, in.Constraints, maxScope); denied {
			result.Denied = append(result.Denied, Denial{IntentID: c.ID, Reason: reason})
			continue
		}
		result.AuthorizedIntents = append(result.AuthorizedIntents, c)
	}

	return result
}

// #endregion authorize

// #region rules
func evaluate(c intent.Candidate, caps CapabilitySnapshot, cons *Constraints, maxScope intent.Scope) (DenialReason, bool) {
	// A1
	required := nonEmpty(c.RequiresCapabilities)
	if len(required) == 0 {
		return ReasonMissingDeclaration, true
	}

	// A2
	for _, id := range required {
		if !HasCapability(caps, id) {
			return ReasonMissingCapability, true
		}
	}

	// A3
	for _, id := range nonEmpty(c.DeniesCapabilities) {
		if HasCapability(caps, id) {
			return ReasonDeniedCapability, true
		}
	}
	if cons.denies(c.ID) {
		return ReasonPolicyViolation, true
	}

	// A4
	scope := c.AuthorizationScope
	if scope == "" {
		scope = intent.ScopeRuntime
	}
	if scope.Exceeds(maxScope) {
		return ReasonUnauthorizedScope, true
	}

	return "", false
}

func nonEmpty(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// #endregion rules
