package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var thinkCmd = &cobra.Command{
	Use:   "think <trigger...>",
	Short: "Run one bounded internal deliberation over the current stream",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runThink,
}

func runThink(cmd *cobra.Command, args []string) error {
	rt, _, release, err := openRuntime()
	if err != nil {
		return err
	}
	defer release()

	report, err := rt.Think(strings.Join(args, " "))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		return writeJSON(out, report)
	}

	res := report.Result
	fmt.Fprintf(out, "Deliberation: %s\n", report.DeliberationID)
	fmt.Fprintf(out, "Terminated:   %s after %d iterations\n", res.Reason, res.Iterations)
	if res.FinalAnswer != "" {
		fmt.Fprintf(out, "Answer:       %s\n", res.FinalAnswer)
	}

	t := newTable(out, "trace", 1, 2, 4)
	t.AppendHeader([]any{"#", "Depth", "Question", "Best"})
	for _, e := range res.Trace {
		t.AppendRow([]any{e.Iteration, e.Depth, truncate(e.Question, 70), f2(e.BestScore)})
	}
	t.Render()

	if len(res.PatternCandidates) > 0 {
		p := newTable(out, "pattern candidates", 3)
		p.AppendHeader([]any{"ID", "Title", "Confidence"})
		for _, pc := range res.PatternCandidates {
			p.AppendRow([]any{pc.ID, truncate(pc.Title, 60), f2(pc.Confidence)})
		}
		p.Render()
	}
	fmt.Fprintf(out, "eval: %s\n", report.Eval.Reason)
	return nil
}
