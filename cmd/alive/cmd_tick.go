package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/alive-runtime/internal/pipeline"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one generation, arbitration and authorization pass over the stored goals",
	Args:  cobra.NoArgs,
	RunE:  runTick,
}

func runTick(cmd *cobra.Command, _ []string) error {
	rt, _, release, err := openRuntime()
	if err != nil {
		return err
	}
	defer release()

	report, err := rt.RunTick()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		return writeJSON(out, report)
	}

	res := report.Result
	t := newTable(out, "tick "+report.TickID, 2)
	t.AppendHeader([]any{"Intent", "Priority", "Outcome", "Reason"})
	for _, row := range outcomeRows(res) {
		t.AppendRow(row)
	}
	t.Render()

	for _, f := range res.Failures {
		fmt.Fprintf(out, "failure: %s %s: %s\n", f.Subsystem, f.Code, f.Message)
	}
	fmt.Fprintf(out, "eval: %s\n", report.Eval.Reason)
	return nil
}

// outcomeRows lists every candidate with the stage that decided it.
func outcomeRows(res pipeline.TickResult) [][]any {
	eliminated := make(map[string]string, len(res.Eliminated))
	for _, e := range res.Eliminated {
		eliminated[e.IntentID] = string(e.Reason)
	}
	denied := make(map[string]string, len(res.Denied))
	for _, d := range res.Denied {
		denied[d.IntentID] = string(d.Reason)
	}

	rows := make([][]any, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		outcome, reason := "authorized", ""
		if r, ok := eliminated[c.ID]; ok {
			outcome, reason = "eliminated", r
		} else if r, ok := denied[c.ID]; ok {
			outcome, reason = "denied", r
		}
		rows = append(rows, []any{c.ID, c.Priority, outcome, reason})
	}
	return rows
}
