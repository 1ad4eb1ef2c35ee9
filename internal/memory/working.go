package memory

import (
	"encoding/json"
	"strings"
	"time"
)

// #region types

// Assumption is a working-memory belief folded from an "assumption" event.
type Assumption struct {
	Text        string     `json:"text"`
	Confidence  Confidence `json:"confidence"`
	Timestamp   time.Time  `json:"timestamp"`
	Validated   *bool      `json:"validated,omitempty"`
	ValidatedAt time.Time  `json:"validatedAt,omitzero"`
	Topic       string     `json:"topic"`
}

// WorkingSummary describes the live assumption set.
type WorkingSummary struct {
	Assumptions         []Assumption  `json:"assumptions"`
	Contradictions      bool          `json:"contradictions"`
	ContradictingTopics []string      `json:"contradictingTopics"`
	Observed            int           `json:"observed"`
	Decayed             int           `json:"decayed"`
	SessionAge          time.Duration `json:"sessionAge"`
	LastUpdate          time.Time     `json:"lastUpdate,omitzero"`
	DecayThreshold      time.Duration `json:"decayThreshold"`
}

// WorkingState is the derived working-memory view.
type WorkingState struct {
	State     map[string]any `json:"state"`
	Summary   WorkingSummary `json:"summary"`
	DerivedAt time.Time      `json:"derivedAt"`
	Window    Window         `json:"window"`
}

// WorkingOptions tunes assumption decay and topic extraction.
type WorkingOptions struct {
	DecayThreshold time.Duration `json:"decayThreshold" yaml:"decay_threshold"`
	TopicKeywords  []string      `json:"topicKeywords" yaml:"topic_keywords"`
}

// DefaultWorkingOptions returns the stock working-memory tuning.
func DefaultWorkingOptions() WorkingOptions {
	return WorkingOptions{
		DecayThreshold: time.Hour,
		TopicKeywords:  []string{"ingredient", "temperature", "time", "method", "tool"},
	}
}

func (o WorkingOptions) withDefaults() WorkingOptions {
	d := DefaultWorkingOptions()
	o.DecayThreshold = orDuration(o.DecayThreshold, d.DecayThreshold)
	if len(o.TopicKeywords) == 0 {
		o.TopicKeywords = d.TopicKeywords
	}
	return o
}

const (
	EventAssumption  = "assumption"
	EventStateUpdate = "state_update"
	EventLearning    = "learning"

	generalTopic = "general"
)

// #endregion types

// #region derive

// DeriveWorking folds assumption and state_update events into working memory. Assumptions
// older than the decay threshold are dropped; contradictions are flagged when one topic holds
// both a validated and an invalidated assumption. The stream summary, when given, contributes
// streamMode and streamTopics to the state map.
func DeriveWorking(events []Event, stream *StreamSummary, now time.Time, opts WorkingOptions) WorkingState {
	cfg := opts.withDefaults()

	state := make(map[string]any)
	var assumptions []Assumption
	var lastUpdate time.Time

	for _, e := range events {
		if lastUpdate.IsZero() || e.Timestamp.After(lastUpdate) {
			lastUpdate = e.Timestamp
		}

		switch e.Type {
		case EventAssumption:
			if a, ok := parseAssumption(e, cfg.TopicKeywords); ok {
				assumptions = append(assumptions, a)
			}
		case EventStateUpdate:
			for k, raw := range e.payloadObject() {
				var v any
				if json.Unmarshal(raw, &v) == nil {
					state[k] = v
				}
			}
		}
	}

	if stream != nil {
		state["streamMode"] = string(stream.Mode)
		state["streamTopics"] = append([]string{}, stream.KeyTopics...)
	}

	live := make([]Assumption, 0, len(assumptions))
	for _, a := range assumptions {
		if now.Sub(a.Timestamp) <= cfg.DecayThreshold {
			live = append(live, a)
		}
	}
	topics := contradictingTopics(live)

	window := eventWindow(events)
	var sessionAge time.Duration
	if !window.Start.IsZero() {
		sessionAge = now.Sub(window.Start)
	}

	return WorkingState{
		State: state,
		Summary: WorkingSummary{
			Assumptions:         live,
			Contradictions:      len(topics) > 0,
			ContradictingTopics: topics,
			Observed:            len(assumptions),
			Decayed:             len(assumptions) - len(live),
			SessionAge:          sessionAge,
			LastUpdate:          lastUpdate,
			DecayThreshold:      cfg.DecayThreshold,
		},
		DerivedAt: now,
		Window:    window,
	}
}

// #endregion derive

// #region helpers
func parseAssumption(e Event, keywords []string) (Assumption, bool) {
	obj := e.payloadObject()
	text, ok := decodeString(obj["text"])
	if !ok {
		return Assumption{}, false
	}
	a := Assumption{
		Text:       text,
		Confidence: NormalizeConfidence(obj["confidence"]),
		Timestamp:  e.Timestamp,
		Topic:      topicOf(text, keywords),
	}
	if v, ok := decodeBool(obj["validated"]); ok {
		a.Validated = &v
		a.ValidatedAt = e.Timestamp
	}
	return a, true
}

func topicOf(text string, keywords []string) string {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return k
		}
	}
	return generalTopic
}

// contradictingTopics lists, in first-seen order, the topics holding both verdicts.
func contradictingTopics(assumptions []Assumption) []string {
	type verdicts struct{ yes, no bool }
	seen := make(map[string]*verdicts)
	var order []string
	for _, a := range assumptions {
		if a.Validated == nil {
			continue
		}
		v, ok := seen[a.Topic]
		if !ok {
			v = &verdicts{}
			seen[a.Topic] = v
			order = append(order, a.Topic)
		}
		if *a.Validated {
			v.yes = true
		} else {
			v.no = true
		}
	}

	out := []string{}
	for _, t := range order {
		if seen[t].yes && seen[t].no {
			out = append(out, t)
		}
	}
	return out
}

// #endregion helpers
