package memory

import (
	"encoding/json"
	"fmt"
	"time"
)

var testNow = time.UnixMilli(1_700_000_000_000).UTC()

func ev(id, typ string, ts time.Time, payload any) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("marshal payload: %v", err))
	}
	return Event{ID: id, Timestamp: ts, Source: "test", Type: typ, Importance: 0.5, Payload: raw}
}

func learning(id, label string, ts time.Time, extra map[string]any) Event {
	payload := map[string]any{"label": label, "confidence": map[string]any{"value": 0.9}}
	for k, v := range extra {
		payload[k] = v
	}
	return ev(id, EventLearning, ts, payload)
}
