package eval

import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/alive-runtime/internal/dialogue"
	"github.com/danielpatrickdp/alive-runtime/internal/gate"
	"github.com/danielpatrickdp/alive-runtime/internal/intent"
	"github.com/danielpatrickdp/alive-runtime/internal/memory"
)

// #region check-tick
// CheckTick validates one generation, arbitration and authorization pass: every input is
// accounted for exactly once at each stage, survivors and authorized intents keep input
// order, and no exclusive key has two survivors.
func CheckTick(candidates []intent.Candidate, arb gate.ArbitrationResult, auth gate.AuthorizationResult) EvalResult {
	var c collector

	accounted := len(arb.SurvivingIntents) + len(arb.Eliminated)
	c.check("arbitration_accounted", float64(accounted), accounted == len(candidates),
		fmt.Sprintf("arbitration accounted for %d of %d candidates", accounted, len(candidates)))

	c.check("survivor_order", float64(len(arb.SurvivingIntents)), isSubsequence(arb.SurvivingIntents, candidates),
		"survivors are not in input order")

	dup := duplicateExclusiveKeys(arb.SurvivingIntents)
	c.check("exclusive_keys", float64(dup), dup == 0,
		fmt.Sprintf("%d exclusive keys held by more than one survivor", dup))

	decided := len(auth.AuthorizedIntents) + len(auth.Denied)
	c.check("authorization_accounted", float64(decided), decided == len(arb.SurvivingIntents),
		fmt.Sprintf("authorization decided %d of %d survivors", decided, len(arb.SurvivingIntents)))

	c.check("authorized_order", float64(len(auth.AuthorizedIntents)), isSubsequence(auth.AuthorizedIntents, arb.SurvivingIntents),
		"authorized intents are not in survivor order")

	return c.result()
}
// #endregion check-tick

// #region check-deliberation
// CheckDeliberation validates the bounds of a dialogue run against the normalized config.
func CheckDeliberation(res dialogue.Result, cfg dialogue.Config) EvalResult {
	cfg = cfg.Normalized()
	var c collector

	c.check("terminated", boolValue(res.Terminated), res.Terminated && res.Reason != "",
		"run did not report a termination reason")
	c.check("iterations", float64(res.Iterations), res.Iterations <= cfg.Termination.MaxIterations,
		fmt.Sprintf("iterations %d exceed %d", res.Iterations, cfg.Termination.MaxIterations))
	c.check("trace_length", float64(len(res.Trace)), len(res.Trace) <= cfg.MaxTraceEntries,
		fmt.Sprintf("trace length %d exceeds %d", len(res.Trace), cfg.MaxTraceEntries))
	c.check("pattern_candidates", float64(len(res.PatternCandidates)), len(res.PatternCandidates) <= cfg.MaxPatternCandidates,
		fmt.Sprintf("pattern candidates %d exceed %d", len(res.PatternCandidates), cfg.MaxPatternCandidates))

	return c.result()
}
// #endregion check-deliberation

// #region check-long-term
// CheckLongTerm validates the long-term view: it respects the entry cap and holds no
// unprotected entry staler than the demotion age.
func CheckLongTerm(lt memory.LongTermState, opts memory.LongTermOptions, now time.Time) EvalResult {
	def := memory.DefaultLongTermOptions()
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = def.MaxEntries
	}
	if opts.DemotionAge <= 0 {
		opts.DemotionAge = def.DemotionAge
	}
	var c collector

	c.check("entries", float64(len(lt.Entries)), len(lt.Entries) <= opts.MaxEntries,
		fmt.Sprintf("%d entries exceed cap %d", len(lt.Entries), opts.MaxEntries))

	stale := 0
	for _, e := range lt.Entries {
		if !e.Protected && now.Sub(e.LastSeen) > opts.DemotionAge {
			stale++
		}
	}
	c.check("stale_entries", float64(stale), stale == 0,
		fmt.Sprintf("%d stale unprotected entries", stale))

	return c.result()
}
// #endregion check-long-term

// #region helpers
// isSubsequence reports whether sub appears in full in the same relative order, by id.
func isSubsequence(sub, full []intent.Candidate) bool {
	j := 0
	for _, c := range full {
		if j < len(sub) && sub[j].ID == c.ID {
			j++
		}
	}
	return j == len(sub)
}

func duplicateExclusiveKeys(survivors []intent.Candidate) int {
	seen := make(map[string]int)
	for _, c := range survivors {
		if c.ExclusiveKey != "" {
			seen[c.ExclusiveKey]++
		}
	}
	dup := 0
	for _, n := range seen {
		if n > 1 {
			dup++
		}
	}
	return dup
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
