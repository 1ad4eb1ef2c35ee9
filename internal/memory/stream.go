package memory

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// #region types

// Mode is the recency classification of the stream.
type Mode string

const (
	ModeActive  Mode = "ACTIVE"
	ModeRelaxed Mode = "RELAXED"
	ModeIdle    Mode = "IDLE"
)

// StreamEntry is an event as held in short-term memory.
type StreamEntry struct {
	Event
	AddedAt time.Time `json:"addedAt"`
}

// TimeSpan is the range covered by a collapsed stream.
type TimeSpan struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// StreamSummary carries what the stream knows about itself, including what was trimmed.
type StreamSummary struct {
	Mode        Mode           `json:"mode"`
	MaxSize     int            `json:"maxSize"`
	TotalCount  int            `json:"totalCount"`
	InputTypes  map[string]int `json:"inputTypes"`
	KeyTopics   []string       `json:"keyTopics"`
	CollapsedAt time.Time      `json:"collapsedAt,omitzero"`
	TimeSpan    *TimeSpan      `json:"timeSpan,omitempty"`
}

// StreamState is the derived short-term view.
type StreamState struct {
	Entries   []StreamEntry `json:"entries"`
	Summary   StreamSummary `json:"summary"`
	DerivedAt time.Time     `json:"derivedAt"`
	Window    Window        `json:"window"`
}

// StreamOptions tunes mode classification and retention. Non-positive fields take defaults.
type StreamOptions struct {
	ActiveThreshold int           `json:"activeThreshold" yaml:"active_threshold"`
	ActiveWindow    time.Duration `json:"activeWindow" yaml:"active_window"`
	RelaxedWindow   time.Duration `json:"relaxedWindow" yaml:"relaxed_window"`
	ActiveMaxSize   int           `json:"activeMaxSize" yaml:"active_max_size"`
	RelaxedMaxSize  int           `json:"relaxedMaxSize" yaml:"relaxed_max_size"`
	IdleMaxSize     int           `json:"idleMaxSize" yaml:"idle_max_size"`
	IdleKeepCount   int           `json:"idleKeepCount" yaml:"idle_keep_count"`
	TopicMinLength  int           `json:"topicMinLength" yaml:"topic_min_length"`
	TopicLimit      int           `json:"topicLimit" yaml:"topic_limit"`
}

// DefaultStreamOptions returns the stock stream tuning.
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		ActiveThreshold: 5,
		ActiveWindow:    time.Minute,
		RelaxedWindow:   5 * time.Minute,
		ActiveMaxSize:   20,
		RelaxedMaxSize:  100,
		IdleMaxSize:     5,
		IdleKeepCount:   5,
		TopicMinLength:  4,
		TopicLimit:      5,
	}
}

func (o StreamOptions) withDefaults() StreamOptions {
	d := DefaultStreamOptions()
	o.ActiveThreshold = orInt(o.ActiveThreshold, d.ActiveThreshold)
	o.ActiveWindow = orDuration(o.ActiveWindow, d.ActiveWindow)
	o.RelaxedWindow = orDuration(o.RelaxedWindow, d.RelaxedWindow)
	o.ActiveMaxSize = orInt(o.ActiveMaxSize, d.ActiveMaxSize)
	o.RelaxedMaxSize = orInt(o.RelaxedMaxSize, d.RelaxedMaxSize)
	o.IdleMaxSize = orInt(o.IdleMaxSize, d.IdleMaxSize)
	o.IdleKeepCount = orInt(o.IdleKeepCount, d.IdleKeepCount)
	o.TopicMinLength = orInt(o.TopicMinLength, d.TopicMinLength)
	o.TopicLimit = orInt(o.TopicLimit, d.TopicLimit)
	return o
}

// #endregion types

// #region derive

// DeriveStream classifies the recency mode of events and trims them to that mode's cap.
// ACTIVE when at least ActiveThreshold events arrived within ActiveWindow of now, IDLE when
// the last event is older than RelaxedWindow, RELAXED otherwise. An IDLE stream collapses to
// its last IdleKeepCount entries plus a summary of everything it held.
func DeriveStream(events []Event, now time.Time, opts StreamOptions) StreamState {
	cfg := opts.withDefaults()

	entries := make([]StreamEntry, len(events))
	for i, e := range events {
		entries[i] = StreamEntry{Event: e, AddedAt: e.Timestamp}
	}

	lastActivity := now
	if len(entries) > 0 {
		lastActivity = entries[len(entries)-1].AddedAt
	}
	recent := 0
	activeFrom := now.Add(-cfg.ActiveWindow)
	for _, e := range entries {
		if !e.AddedAt.Before(activeFrom) {
			recent++
		}
	}

	mode, maxSize := ModeRelaxed, cfg.RelaxedMaxSize
	if recent >= cfg.ActiveThreshold {
		mode, maxSize = ModeActive, cfg.ActiveMaxSize
	} else if now.Sub(lastActivity) > cfg.RelaxedWindow {
		mode, maxSize = ModeIdle, cfg.IdleMaxSize
	}

	summary := StreamSummary{
		Mode:       mode,
		MaxSize:    maxSize,
		TotalCount: len(entries),
	}

	kept := entries
	switch {
	case mode == ModeIdle && len(entries) > 0:
		summary.TimeSpan = &TimeSpan{Start: entries[0].Timestamp, End: entries[len(entries)-1].Timestamp}
		summary.CollapsedAt = now
		summary.InputTypes = inputTypes(entries)
		summary.KeyTopics = keyTopics(entries, cfg.TopicMinLength, cfg.TopicLimit)
		kept = tail(entries, cfg.IdleKeepCount)
	case len(entries) > maxSize:
		removed := entries[:len(entries)-maxSize]
		kept = tail(entries, maxSize)
		summary.InputTypes = inputTypes(removed)
		summary.KeyTopics = keyTopics(kept, cfg.TopicMinLength, cfg.TopicLimit)
	default:
		summary.InputTypes = inputTypes(entries)
		summary.KeyTopics = keyTopics(entries, cfg.TopicMinLength, cfg.TopicLimit)
	}

	kept = append([]StreamEntry{}, kept...)
	window := Window{Count: len(kept)}
	if len(kept) > 0 {
		window.Start = kept[0].Timestamp
		window.End = kept[len(kept)-1].Timestamp
	}

	return StreamState{
		Entries:   kept,
		Summary:   summary,
		DerivedAt: now,
		Window:    window,
	}
}

// #endregion derive

// #region snapshot

// ReadSnapshot renders the most recent entries, oldest first, one line per entry.
// StreamState satisfies dialogue.SnapshotReader.
func (s StreamState) ReadSnapshot(limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	entries := tail(s.Entries, limit)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, renderEntry(e))
	}
	return out
}

func renderEntry(e StreamEntry) string {
	if text, ok := e.payloadText(); ok {
		return fmt.Sprintf("%s: %s", e.Type, text)
	}
	if len(e.Payload) == 0 {
		return e.Type
	}
	return fmt.Sprintf("%s: %s", e.Type, string(e.Payload))
}

// #endregion snapshot

// #region helpers
func inputTypes(entries []StreamEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		t := e.Type
		if t == "" {
			t = "unknown"
		}
		counts[t]++
	}
	return counts
}

// keyTopics counts words of at least minLength in string payloads and returns the most
// frequent, ties kept in first-seen order.
func keyTopics(entries []StreamEntry, minLength, limit int) []string {
	word := regexp.MustCompile(fmt.Sprintf(`\b\w{%d,}\b`, minLength))

	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		text, ok := e.payloadText()
		if !ok {
			continue
		}
		for _, w := range word.FindAllString(strings.ToLower(text), -1) {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		return []string{}
	}
	return order
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

// #endregion helpers
