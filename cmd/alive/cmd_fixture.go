package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/alive-runtime/internal/replay"
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Build replay fixtures",
}

var fixtureExportFlags struct {
	out         string
	description string
}

var fixtureExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored goals and configured context as a regression fixture",
	Args:  cobra.NoArgs,
	RunE:  runFixtureExport,
}

func init() {
	f := fixtureExportCmd.Flags()
	f.StringVar(&fixtureExportFlags.out, "out", "", "output fixture JSON path (required)")
	f.StringVar(&fixtureExportFlags.description, "description", "exported goal snapshot", "fixture description")
	_ = fixtureExportCmd.MarkFlagRequired("out")

	fixtureCmd.AddCommand(fixtureExportCmd)
}

func runFixtureExport(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	goals, err := st.ListGoals()
	if err != nil {
		return err
	}
	caps, err := json.Marshal(map[string][]string{"capabilityIds": cfg.Authorization.Capabilities})
	if err != nil {
		return fmt.Errorf("marshal capabilities: %w", err)
	}

	fc := replay.FixtureContext{
		Constraints:  cfg.Authorization.ToConstraints(),
		Capabilities: caps,
		Declarations: cfg.Authorization.Declarations,
		Dialogue:     cfg.Dialogue,
	}
	f, err := replay.BuildFixture(fixtureExportFlags.description, fc, []replay.FixtureTick{
		{TickID: "export-1", Goals: goals},
	})
	if err != nil {
		return err
	}
	if err := replay.WriteFixture(f, fixtureExportFlags.out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d goals)\n", fixtureExportFlags.out, len(goals))
	return nil
}
