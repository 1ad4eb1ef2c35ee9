package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Derive stream, working and long-term views, recall ranking and reset advice",
	Args:  cobra.NoArgs,
	RunE:  runMemory,
}

func runMemory(cmd *cobra.Command, _ []string) error {
	rt, _, release, err := openRuntime()
	if err != nil {
		return err
	}
	defer release()

	report, err := rt.Memory()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		return writeJSON(out, report)
	}

	s := report.Views.Stream.Summary
	fmt.Fprintf(out, "Stream:   %s, %d of %d events kept (max %d)\n", s.Mode, len(report.Views.Stream.Entries), s.TotalCount, s.MaxSize)
	if len(s.KeyTopics) > 0 {
		fmt.Fprintf(out, "Topics:   %s\n", strings.Join(s.KeyTopics, ", "))
	}
	w := report.Views.Working.Summary
	fmt.Fprintf(out, "Working:  %d assumptions, %d contradicting topics, %d of %d decayed\n",
		len(w.Assumptions), len(w.ContradictingTopics), w.Decayed, w.Observed)

	lt := newTable(out, "long-term", 2, 3)
	lt.AppendHeader([]any{"Label", "Confidence", "Seen", "Last seen", "Protected"})
	for _, e := range report.Views.LongTerm.Entries {
		lt.AppendRow([]any{truncate(e.Label, 50), f2(e.Confidence.Value), e.AccessCount, e.LastSeen.Format("2006-01-02 15:04"), e.Protected})
	}
	lt.Render()

	rc := newTable(out, "recall", 2, 3, 4)
	rc.AppendHeader([]any{"Content", "Score", "Confidence", "Uncertainty", "Conflicts"})
	for _, r := range report.Recall {
		rc.AppendRow([]any{truncate(fmt.Sprint(r.Content), 50), f2(r.Score), f2(r.Confidence), f2(r.Uncertainty), strings.Join(r.Conflicts, ", ")})
	}
	rc.Render()

	reset := report.Reset
	fmt.Fprintf(out, "Reset:    %s (confidence %s)\n", reset.Level, f2(reset.Confidence))
	for _, ev := range reset.Evidence {
		fmt.Fprintf(out, "  %s score=%s\n", ev.Reason, f2(ev.Score))
	}
	fmt.Fprintf(out, "eval: %s\n", report.LongTerm.Reason)
	return nil
}
