package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/alive-runtime/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json...>",
	Short: "Replay tick fixtures and report drift from their recorded outcomes",
	Args:  cobra.MinimumNArgs(1),
	// replay needs no database
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	reports := make([]replay.Report, len(args))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			r, err := replay.RunFixture(path)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		if err := writeJSON(out, reports); err != nil {
			return err
		}
	} else {
		t := newTable(out, "replay", 2, 3, 4, 5, 6, 7)
		t.AppendHeader([]any{"Fixture", "Ticks", "Authorized", "Eliminated", "Denied", "Failures", "Mismatches"})
		for _, r := range reports {
			s := r.Summary
			t.AppendRow([]any{r.Path, s.TotalTicks, s.Authorized, s.Eliminated, s.Denied, s.Failures, len(r.Mismatches)})
		}
		t.Render()
		for _, r := range reports {
			for _, m := range r.Mismatches {
				fmt.Fprintf(out, "%s: %s\n", r.Path, m)
			}
		}
	}

	drifted := 0
	for _, r := range reports {
		if len(r.Mismatches) > 0 {
			drifted++
		}
	}
	if drifted > 0 {
		return fmt.Errorf("%d of %d fixtures drifted", drifted, len(reports))
	}
	return nil
}
