package gate

import (
	"github.com/danielpatrickdp/alive-runtime/internal/intent"
)

// #region arbitrate

// Arbitrate eliminates candidates without ranking them. Each candidate is tested once
// against the rules below in order; the first rule it fails eliminates it.
//
//	R1 structural validity: non-empty id, declared source, non-negative priority, object payload.
//	R2 explicit constraint violation: id listed in Constraints.RejectedIntentIDs.
//	R3 hard exclusivity: ExclusiveKey already claimed by an earlier survivor.
//
// Survivors keep their input order.
func Arbitrate(in ArbitrationInput) ArbitrationResult {
	result := ArbitrationResult{
		SurvivingIntents: []intent.Candidate{},
		Eliminated:       []Elimination{},
		Failures:         []intent.Failure{},
		InputCount:       len(in.Candidates),
	}

	claimed := make(map[string]struct{})

	for _, c := range in.Candidates {
		// R1
		if !validShape(c) {
			id := c.ID
			if id == "" {
				id = UnknownIntentID
			}
			result.Eliminated = append(result.Eliminated, Elimination{IntentID: id, Reason: ReasonInvalidShape})
			continue
		}

		// R2
		if in.Constraints.rejects(c.ID) {
			result.Eliminated = append(result.Eliminated, Elimination{IntentID: c.ID, Reason: ReasonConstraintViolation})
			continue
		}

		// R3
		if c.ExclusiveKey != "" {
			if _, taken := claimed[c.ExclusiveKey]; taken {
				result.Eliminated = append(result.Eliminated, Elimination{IntentID: c.ID, Reason: ReasonExclusiveKeyConflict})
				continue
			}
			claimed[c.ExclusiveKey] = struct{}{}
		}

		result.SurvivingIntents = append(result.SurvivingIntents, c)
	}

	return result
}

// #endregion arbitrate

// #region shape
func validShape(c intent.Candidate) bool {
	return c.ID != "" &&
		c.Source != "" &&
		c.Priority >= 0 &&
		c.Payload != nil
}

// #endregion shape
