package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/alive-runtime/internal/memory"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Work with the append-only experience log",
}

var eventAppendFlags struct {
	id         string
	source     string
	eventType  string
	importance float64
	payload    string
	text       string
}

var eventAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "Append one experience event",
	Args:  cobra.NoArgs,
	RunE:  runEventAppend,
}

func init() {
	f := eventAppendCmd.Flags()
	f.StringVar(&eventAppendFlags.id, "id", "", "event id (minted when empty)")
	f.StringVar(&eventAppendFlags.source, "source", "cli", "event source")
	f.StringVar(&eventAppendFlags.eventType, "type", "observation", "event type (assumption, state_update, learning, ...)")
	f.Float64Var(&eventAppendFlags.importance, "importance", 0.5, "importance in [0, 1]")
	f.StringVar(&eventAppendFlags.payload, "payload", "", "JSON payload")
	f.StringVar(&eventAppendFlags.text, "text", "", "plain text payload")
	eventAppendCmd.MarkFlagsMutuallyExclusive("payload", "text")

	eventCmd.AddCommand(eventAppendCmd)
}

func runEventAppend(cmd *cobra.Command, _ []string) error {
	var payload json.RawMessage
	switch {
	case eventAppendFlags.payload != "":
		if !json.Valid([]byte(eventAppendFlags.payload)) {
			return errors.New("--payload is not valid JSON")
		}
		payload = json.RawMessage(eventAppendFlags.payload)
	case eventAppendFlags.text != "":
		raw, err := json.Marshal(eventAppendFlags.text)
		if err != nil {
			return fmt.Errorf("marshal text: %w", err)
		}
		payload = raw
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	e, err := st.AppendEvent(memory.Event{
		ID:         eventAppendFlags.id,
		Source:     eventAppendFlags.source,
		Type:       eventAppendFlags.eventType,
		Importance: eventAppendFlags.importance,
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	if rootFlags.jsonOut {
		return writeJSON(cmd.OutOrStdout(), e)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "appended %s (%s from %s)\n", e.ID, e.Type, e.Source)
	return nil
}
