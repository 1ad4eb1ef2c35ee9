package memory

import (
	"encoding/json"
	"regexp"
	"sort"
	"time"
)

// #region types

// LongTermEntry is a promoted, durable fact.
type LongTermEntry struct {
	ID            string     `json:"id"`
	Label         string     `json:"label"`
	Provenance    []string   `json:"provenance"`
	Confidence    Confidence `json:"confidence"`
	FirstSeen     time.Time  `json:"firstSeen"`
	LastSeen      time.Time  `json:"lastSeen"`
	AccessCount   int        `json:"accessCount"`
	Protected     bool       `json:"protected,omitempty"`
	ConflictsWith []string   `json:"conflictsWith,omitempty"`
}

// LongTermSummary counts what happened during derivation.
type LongTermSummary struct {
	TotalItems int `json:"totalItems"`
	Promoted   int `json:"promoted"`
	Demoted    int `json:"demoted"`
}

// LongTermState is the derived long-term view.
type LongTermState struct {
	Entries   []LongTermEntry `json:"entries"`
	Summary   LongTermSummary `json:"summary"`
	DerivedAt time.Time       `json:"derivedAt"`
	Window    Window          `json:"window"`
}

// LongTermOptions tunes promotion, demotion and the size cap.
type LongTermOptions struct {
	PromotionThreshold int           `json:"promotionThreshold" yaml:"promotion_threshold"`
	PromotionWindow    time.Duration `json:"promotionWindow" yaml:"promotion_window"`
	DemotionAge        time.Duration `json:"demotionAge" yaml:"demotion_age"`
	MaxEntries         int           `json:"maxEntries" yaml:"max_entries"`
}

// DefaultLongTermOptions returns the stock long-term tuning.
func DefaultLongTermOptions() LongTermOptions {
	return LongTermOptions{
		PromotionThreshold: 3,
		PromotionWindow:    30 * 24 * time.Hour,
		DemotionAge:        90 * 24 * time.Hour,
		MaxEntries:         200,
	}
}

func (o LongTermOptions) withDefaults() LongTermOptions {
	d := DefaultLongTermOptions()
	o.PromotionThreshold = orInt(o.PromotionThreshold, d.PromotionThreshold)
	o.PromotionWindow = orDuration(o.PromotionWindow, d.PromotionWindow)
	o.DemotionAge = orDuration(o.DemotionAge, d.DemotionAge)
	o.MaxEntries = orInt(o.MaxEntries, d.MaxEntries)
	return o
}

// #endregion types

// #region derive

// DeriveLongTerm promotes labels observed in "learning" events at least PromotionThreshold
// times within PromotionWindow, drops unprotected entries not seen for DemotionAge, and keeps
// at most MaxEntries, the most recently seen first.
func DeriveLongTerm(events []Event, now time.Time, opts LongTermOptions) LongTermState {
	cfg := opts.withDefaults()

	promoted := promote(observationsOf(events), cfg, now)

	kept := make([]LongTermEntry, 0, len(promoted))
	demoted := 0
	for _, e := range promoted {
		if !e.Protected && now.Sub(e.LastSeen) > cfg.DemotionAge {
			demoted++
			continue
		}
		kept = append(kept, e)
	}

	if len(kept) > cfg.MaxEntries {
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].LastSeen.After(kept[j].LastSeen) })
		kept = kept[:cfg.MaxEntries]
	}

	return LongTermState{
		Entries: kept,
		Summary: LongTermSummary{
			TotalItems: len(kept),
			Promoted:   len(promoted),
			Demoted:    demoted,
		},
		DerivedAt: now,
		Window:    eventWindow(events),
	}
}

// #endregion derive

// #region observations

type observation struct {
	label         string
	timestamp     time.Time
	provenance    string
	confidence    Confidence
	protected     bool
	conflictsWith []string
}

func observationsOf(events []Event) []observation {
	var out []observation
	for _, e := range events {
		if e.Type != EventLearning {
			continue
		}
		obj := e.payloadObject()
		label, ok := decodeString(obj["label"])
		if !ok {
			continue
		}
		protected, _ := decodeBool(obj["protected"])
		var conflicts []string
		_ = json.Unmarshal(obj["conflictsWith"], &conflicts)
		out = append(out, observation{
			label:         label,
			timestamp:     e.Timestamp,
			provenance:    e.ID,
			confidence:    NormalizeConfidence(obj["confidence"]),
			protected:     protected,
			conflictsWith: conflicts,
		})
	}
	return out
}

var whitespace = regexp.MustCompile(`\s+`)

// promote groups observations by label in first-seen order and keeps the labels seen often
// enough inside the promotion window. Confidence averages every observation of the label.
func promote(observations []observation, cfg LongTermOptions, now time.Time) []LongTermEntry {
	groups := make(map[string][]observation)
	var order []string
	for _, o := range observations {
		if _, ok := groups[o.label]; !ok {
			order = append(order, o.label)
		}
		groups[o.label] = append(groups[o.label], o)
	}

	windowStart := now.Add(-cfg.PromotionWindow)
	entries := []LongTermEntry{}
	for _, label := range order {
		list := groups[label]
		recent := 0
		for _, o := range list {
			if !o.timestamp.Before(windowStart) {
				recent++
			}
		}
		if recent < cfg.PromotionThreshold {
			continue
		}

		entry := LongTermEntry{
			ID:          "lt_" + whitespace.ReplaceAllString(label, "_"),
			Label:       label,
			FirstSeen:   list[0].timestamp,
			LastSeen:    list[0].timestamp,
			AccessCount: len(list),
		}
		sum := 0.0
		conflicts := make(map[string]bool)
		for _, o := range list {
			if o.timestamp.Before(entry.FirstSeen) {
				entry.FirstSeen = o.timestamp
			}
			if o.timestamp.After(entry.LastSeen) {
				entry.LastSeen = o.timestamp
			}
			sum += o.confidence.Value
			entry.Provenance = append(entry.Provenance, o.provenance)
			entry.Protected = entry.Protected || o.protected
			for _, c := range o.conflictsWith {
				if c != "" && c != label && !conflicts[c] {
					conflicts[c] = true
					entry.ConflictsWith = append(entry.ConflictsWith, c)
				}
			}
		}
		entry.Confidence = Confidence{Value: clamp01(sum / float64(len(list)))}
		entries = append(entries, entry)
	}
	return entries
}

// #endregion observations
