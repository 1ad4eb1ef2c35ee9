package main

import (
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/alive-runtime/internal/logging"
)

var inspectFlags struct {
	last int
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show recent tick and deliberation provenance and stored patterns",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectFlags.last, "last", 20, "show N most recent rows per table")
}

type inspection struct {
	Ticks         []logging.TickEntry         `json:"ticks"`
	Deliberations []logging.DeliberationEntry `json:"deliberations"`
	Patterns      []patternRow                `json:"patterns"`
}

type patternRow struct {
	DeliberationID string  `json:"deliberation_id"`
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Confidence     float64 `json:"confidence"`
	CreatedAt      string  `json:"created_at"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var in inspection
	if in.Ticks, err = logging.RecentTicks(st.DB(), inspectFlags.last); err != nil {
		return err
	}
	if in.Deliberations, err = logging.RecentDeliberations(st.DB(), inspectFlags.last); err != nil {
		return err
	}
	patterns, err := st.ListPatterns(inspectFlags.last)
	if err != nil {
		return err
	}
	for _, p := range patterns {
		in.Patterns = append(in.Patterns, patternRow{
			DeliberationID: p.DeliberationID,
			ID:             p.ID,
			Title:          p.Title,
			Confidence:     p.Confidence,
			CreatedAt:      p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		return writeJSON(out, in)
	}

	ticks := newTable(out, "ticks", 2, 3, 4, 5, 6)
	ticks.AppendHeader([]any{"Tick", "Goals", "Survivors", "Authorized", "Denied", "Failures", "Eval", "At"})
	for _, e := range in.Ticks {
		eval := "pass"
		if !e.EvalPassed {
			eval = truncate(e.EvalReason, 40)
		}
		ticks.AppendRow([]any{shortID(e.TickID), e.GoalCount, e.SurvivorCount, e.AuthorizedCount, e.DeniedCount, e.FailureCount, eval, e.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	ticks.Render()

	dels := newTable(out, "deliberations", 4, 5)
	dels.AppendHeader([]any{"Deliberation", "Trigger", "Reason", "Iterations", "Patterns"})
	for _, e := range in.Deliberations {
		dels.AppendRow([]any{shortID(e.DeliberationID), truncate(e.Trigger, 40), e.Reason, e.Iterations, e.PatternCount})
	}
	dels.Render()

	pats := newTable(out, "patterns", 4)
	pats.AppendHeader([]any{"Deliberation", "Pattern", "Title", "Confidence"})
	for _, p := range in.Patterns {
		pats.AppendRow([]any{shortID(p.DeliberationID), p.ID, truncate(p.Title, 50), f2(p.Confidence)})
	}
	pats.Render()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
