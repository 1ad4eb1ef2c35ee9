package memory

import (
	"encoding/json"
	"math"
	"time"
)

// #region event

// EventVersion is the schema version stamped on newly appended events.
const EventVersion = 1

// Event is one immutable experience event, the only input to memory derivation.
// Payload is kept raw; each view decodes only the fields it understands.
type Event struct {
	V          int             `json:"v,omitempty"`
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Source     string          `json:"source"`
	Type       string          `json:"type"`
	Importance float64         `json:"importance"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Normalized fills the base event defaults: schema version, "unknown" source and type,
// importance clamped to [0,1].
func (e Event) Normalized() Event {
	if e.V == 0 {
		e.V = EventVersion
	}
	if e.Source == "" {
		e.Source = "unknown"
	}
	if e.Type == "" {
		e.Type = "unknown"
	}
	e.Importance = clamp01(e.Importance)
	return e
}

// payloadObject decodes the payload as a JSON object, field by field. Non-object payloads
// yield nil.
func (e Event) payloadObject() map[string]json.RawMessage {
	if len(e.Payload) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(e.Payload, &obj); err != nil {
		return nil
	}
	return obj
}

// payloadText returns the payload when it is a JSON string.
func (e Event) payloadText() (string, bool) {
	return decodeString(e.Payload)
}

// #endregion event

// #region confidence

// DefaultConfidence applies when an observation carries no usable confidence.
const DefaultConfidence = 0.8

// Confidence is a value in [0,1] with an optional rationale.
type Confidence struct {
	Value     float64 `json:"value"`
	Rationale string  `json:"rationale,omitempty"`
}

// NormalizeConfidence accepts a bare number or {value, rationale}. Values are clamped to
// [0,1]; anything else gives DefaultConfidence.
func NormalizeConfidence(raw json.RawMessage) Confidence {
	var n float64
	if decodeNumber(raw, &n) {
		return Confidence{Value: clamp01(n)}
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		if decodeNumber(obj["value"], &n) {
			c := Confidence{Value: clamp01(n)}
			var rationale string
			if json.Unmarshal(obj["rationale"], &rationale) == nil {
				c.Rationale = rationale
			}
			return c
		}
	}
	return Confidence{Value: DefaultConfidence}
}

// #endregion confidence

// #region window

// Window describes the span of events a view was derived from. Start and End are zero
// when the window is empty.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`
}

func eventWindow(events []Event) Window {
	if len(events) == 0 {
		return Window{}
	}
	return Window{
		Start: events[0].Timestamp,
		End:   events[len(events)-1].Timestamp,
		Count: len(events),
	}
}

// #endregion window

// #region helpers
func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeNumber rejects null, which json would otherwise decode as 0.
func decodeNumber(raw json.RawMessage, n *float64) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, n) == nil
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if len(raw) == 0 || string(raw) == "null" || json.Unmarshal(raw, &b) != nil {
		return false, false
	}
	return b, true
}

// #endregion helpers
