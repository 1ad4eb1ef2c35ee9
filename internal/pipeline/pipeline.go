package pipeline

import (
	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/goal"
	"github.com/danielpatrickdp/alive-runtime/internal/intent"
)

// #region tick

// Tick runs generation, arbitration and authorization once over explicit snapshots. It never
// executes anything; the pipeline stops at "authorized".
func Tick(goals []goal.Goal, ctx Context) TickResult {
	gen := intent.Generate(goals)
	candidates := declare(gen.Candidates, ctx.Declarations)

	arb := gate.Arbitrate(gate.ArbitrationInput{
		Candidates:  candidates,
		Constraints: ctx.Constraints,
	})
	auth := gate.Authorize(gate.AuthorizationInput{
		SurvivingIntents: arb.SurvivingIntents,
		Capabilities:     ctx.Capabilities,
		Constraints:      ctx.Constraints,
	})

	failures := make([]intent.Failure, 0, len(gen.Failures)+len(arb.Failures)+len(auth.Failures))
	failures = append(failures, gen.Failures...)
	failures = append(failures, arb.Failures...)
	failures = append(failures, auth.Failures...)

	return TickResult{
		Candidates:        candidates,
		SurvivingIntents:  arb.SurvivingIntents,
		Eliminated:        arb.Eliminated,
		AuthorizedIntents: auth.AuthorizedIntents,
		Denied:            auth.Denied,
		Failures:          failures,
		InputCount:        arb.InputCount,
	}
}

// declare returns copies of candidates with matching declarations applied. Payloads are
// shared; nothing downstream writes to them.
func declare(candidates []intent.Candidate, decls map[string]Declaration) []intent.Candidate {
	out := make([]intent.Candidate, len(candidates))
	for i, c := range candidates {
		if d, ok := decls[c.ID]; ok {
			c.RequiresCapabilities = append([]string(nil), d.RequiresCapabilities...)
			c.DeniesCapabilities = append([]string(nil), d.DeniesCapabilities...)
			c.AuthorizationScope = d.AuthorizationScope
			c.ExclusiveKey = d.ExclusiveKey
		}
		out[i] = c
	}
	return out
}

// #endregion tick

// #region deliberate

// Deliberate runs one bounded internal dialogue over trigger. ctx.Memory, when set, takes
// precedence over snapshot.
func Deliberate(trigger string, snapshot []string, ctx Context) dialogue.Result {
	return dialogue.Run(dialogue.Request{
		Trigger:        trigger,
		MemorySnapshot: snapshot,
		Specialists:    ctx.Specialists,
		Reader:         ctx.Memory,
	}, ctx.Dialogue)
}

// #endregion deliberate
