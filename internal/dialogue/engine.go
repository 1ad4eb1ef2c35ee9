package dialogue

import (
	"fmt"
	"strings"
)

// #region run

// Run drives the internal dialogue loop until one of the termination conditions fires. Each
// iteration collects specialist advice, generates and scores candidate thoughts, reflects on
// the best one and updates the termination state. The trace never grows beyond
// cfg.MaxTraceEntries, whatever the other bounds say.
func Run(req Request, cfg Config) Result {
	cfg = cfg.Normalized()
	snapshot := readSnapshot(req)

	question := initialQuestion(req.Trigger)
	var finalAnswer string

	trace := make([]TraceEntry, 0, cfg.MaxTraceEntries)
	patterns := []PatternCandidate{}
	prior := []string{}
	state := TerminationState{}

	finish := func(reason TerminationReason) Result {
		return Result{
			Terminated:        true,
			Reason:            reason,
			Iterations:        state.Iterations,
			FinalAnswer:       finalAnswer,
			Trace:             trace,
			PatternCandidates: patterns,
		}
	}

	for {
		if len(trace) >= cfg.MaxTraceEntries {
			return finish(ReasonMaxIterations)
		}

		advice := collectAdvice(req.Specialists, question, req.Trigger, snapshot)
		texts := candidateThoughts(req.Trigger, question, snapshot, advice, cfg.MaxThoughtsPerIteration)

		thoughts := make([]Thought, len(texts))
		for i, text := range texts {
			thoughts[i] = Thought{
				ID:     fmt.Sprintf("t%d_%d", state.Iterations, i),
				Text:   text,
				Scores: ScoreThought(text, question, snapshot, prior),
			}
		}

		best := bestThought(thoughts)
		bestScore, bestContradiction := 0.0, 1.0
		if best != nil {
			bestScore, bestContradiction = best.Scores.Total, best.Scores.Contradiction
		}

		r := Reflect(req.Trigger, question, thoughts, snapshot, state.Depth)
		if r.ShouldProposePattern && r.PatternCandidate != nil && len(patterns) < cfg.MaxPatternCandidates {
			patterns = append(patterns, *r.PatternCandidate)
		}

		if best != nil {
			prior = append(prior, best.Text)
			finalAnswer = best.Text
		}

		trace = append(trace, TraceEntry{
			Iteration: state.Iterations,
			Depth:     state.Depth,
			Question:  question,
			BestScore: bestScore,
			Notes:     r.RevisionNotes,
		})

		state.Iterations++
		reason, done := ShouldTerminate(cfg.Termination, &state, bestScore, bestContradiction, r.NextQuestion != "")
		state.LastBestScore = max(state.LastBestScore, bestScore)
		if done {
			return finish(reason)
		}

		question = r.NextQuestion
		state.Depth++
	}
}

// #endregion run

// #region advice

// collectAdvice consults every specialist in order. A specialist that errors or panics
// contributes nothing.
func collectAdvice(specialists []Specialist, question, trigger string, snapshot []string) []string {
	var advice []string
	for _, s := range specialists {
		advice = append(advice, safeAdvise(s, question, trigger, snapshot)...)
	}
	return advice
}

func safeAdvise(s Specialist, question, trigger string, snapshot []string) (out []string) {
	if s == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	view := append([]string(nil), snapshot...)
	advice, err := s.Advise(question, trigger, view)
	if err != nil {
		return nil
	}
	return advice
}

// #endregion advice

// #region thoughts
func initialQuestion(trigger string) string {
	t := strings.TrimSpace(trigger)
	if t == "" {
		return "What needs to be resolved internally?"
	}
	return fmt.Sprintf("What is the best internal interpretation of: %s?", t)
}

// candidateThoughts seeds with specialist advice, then fills up with fixed compositions.
func candidateThoughts(trigger, question string, snapshot, advice []string, limit int) []string {
	thoughts := make([]string, 0, limit)
	for _, a := range advice {
		if len(thoughts) >= limit {
			break
		}
		if a = strings.TrimSpace(a); a != "" {
			thoughts = append(thoughts, a)
		}
	}

	excerpt := snapshot
	if len(excerpt) > 3 {
		excerpt = excerpt[:3]
	}
	templates := []string{
		fmt.Sprintf("Given %q, answer %q using memory: %s", trigger, question, strings.Join(excerpt, " | ")),
		"Conservative interpretation: focus only on what is supported by trigger and memory.",
		"If contradictions exist, prioritize the least-contradictory explanation.",
		"Propose a compressed pattern, not raw speculation.",
	}
	for _, t := range templates {
		if len(thoughts) >= limit {
			break
		}
		thoughts = append(thoughts, t)
	}
	return thoughts
}

func readSnapshot(req Request) []string {
	var src []string
	if req.Reader != nil {
		src = req.Reader.ReadSnapshot(SnapshotLimit)
	} else {
		src = req.MemorySnapshot
	}
	if len(src) > SnapshotLimit {
		src = src[:SnapshotLimit]
	}
	return append([]string{}, src...)
}

// #endregion thoughts
