package memory

import "time"

// #region derive-all

// Options groups the tuning of every derived view.
type Options struct {
	Stream   StreamOptions   `json:"stream" yaml:"stream"`
	Working  WorkingOptions  `json:"working" yaml:"working"`
	LongTerm LongTermOptions `json:"longTerm" yaml:"long_term"`
}

// DefaultOptions returns the stock tuning of every view.
func DefaultOptions() Options {
	return Options{
		Stream:   DefaultStreamOptions(),
		Working:  DefaultWorkingOptions(),
		LongTerm: DefaultLongTermOptions(),
	}
}

// Views are the three derived memory views of one event window.
type Views struct {
	Stream   StreamState   `json:"stream"`
	Working  WorkingState  `json:"working"`
	LongTerm LongTermState `json:"longTerm"`
}

// Derive runs stream, working and long-term derivation over the same events. Working memory
// sees the stream summary.
func Derive(events []Event, now time.Time, opts Options) Views {
	stream := DeriveStream(events, now, opts.Stream)
	return Views{
		Stream:   stream,
		Working:  DeriveWorking(events, &stream.Summary, now, opts.Working),
		LongTerm: DeriveLongTerm(events, now, opts.LongTerm),
	}
}

// #endregion derive-all

// #region reset-inputs

// weakConfidence marks a long-term entry as weak.
const weakConfidence = 0.5

// ResetInputsFrom summarizes derived views into reset evaluator inputs.
//
// Contradictions count the validated assumptions on contradicting topics; turnover is the
// share of observed assumptions that decayed; event rate is stream entries per minute over
// the stream window, with a one minute floor.
func ResetInputsFrom(v Views, now time.Time) ResetInputs {
	in := ResetInputs{Now: now}

	w := v.Working.Summary
	contradicting := make(map[string]bool, len(w.ContradictingTopics))
	for _, t := range w.ContradictingTopics {
		contradicting[t] = true
	}
	confs := make([]float64, 0, len(w.Assumptions))
	for _, a := range w.Assumptions {
		confs = append(confs, a.Confidence.Value)
		if a.Validated != nil && contradicting[a.Topic] {
			in.Working.ContradictionCount++
		}
	}
	in.Working.AssumptionCount = len(w.Assumptions)
	in.Working.ContradictionRate = ratio(in.Working.ContradictionCount, len(w.Assumptions))
	in.Working.AssumptionTurnoverRate = ratio(w.Decayed, w.Observed)
	in.Working.MeanConfidence = Confidence{Value: meanOr(confs, DefaultConfidence)}

	sw := v.Stream.Window
	in.Stream.LastChangeAt = now
	if sw.Count > 0 {
		in.Stream.LastChangeAt = sw.End
		span := max(sw.End.Sub(sw.Start), time.Minute)
		in.Stream.EventRate = float64(sw.Count) / span.Minutes()
	}

	entries := v.LongTerm.Entries
	weak, conflicted := 0, 0
	confs = confs[:0]
	for _, e := range entries {
		confs = append(confs, e.Confidence.Value)
		if e.Confidence.Value < weakConfidence {
			weak++
		}
		if len(e.ConflictsWith) > 0 {
			conflicted++
		}
	}
	in.LongTerm.ItemCount = len(entries)
	in.LongTerm.WeakItemRatio = ratio(weak, len(entries))
	in.LongTerm.ConflictRatio = ratio(conflicted, len(entries))
	in.LongTerm.MeanConfidence = Confidence{Value: meanOr(confs, DefaultConfidence)}

	return in
}

// #endregion reset-inputs

// #region recall-items

// RecallItemsFromLongTerm exposes long-term entries to recall ranking, reinforced at their
// last sighting.
func RecallItemsFromLongTerm(entries []LongTermEntry) []RecallItem {
	items := make([]RecallItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, RecallItem{
			ID:               e.ID,
			Content:          e.Label,
			Confidence:       e.Confidence,
			LastReinforcedAt: e.LastSeen,
			Provenance:       append([]string{}, e.Provenance...),
			ConflictsWith:    append([]string(nil), e.ConflictsWith...),
		})
	}
	return items
}

// #endregion recall-items

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func meanOr(values []float64, def float64) float64 {
	if len(values) == 0 {
		return def
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return clamp01(sum / float64(len(values)))
}
