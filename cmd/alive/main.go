package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/alive-runtime/internal/config"
	"github.com/danielpatrickdp/alive-runtime/internal/logging"
	"github.com/danielpatrickdp/alive-runtime/internal/pipeline"
	"github.com/danielpatrickdp/alive-runtime/internal/store"
)

// version is set at build time via -ldflags.
var version = "dev"

// #region root

var rootFlags struct {
	configPath string
	dbPath     string
	jsonOut    bool
}

var cfg *config.Config

var closeLog = func() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "alive",
	Short: "Deterministic goal-to-intent pipeline with bounded internal dialogue",
	Long: "alive turns stored goals into authorized intents one tick at a time, runs bounded\n" +
		"internal deliberations, and derives layered memory views from an append-only event log.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE:  setup,
	PersistentPostRunE: func(*cobra.Command, []string) error { return closeLog() },
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "alive.yaml", "path to the YAML config")
	f.StringVar(&rootFlags.dbPath, "db", "", "SQLite database path (overrides config and ALIVE_DB)")
	f.BoolVar(&rootFlags.jsonOut, "json", false, "output as JSON instead of tables")

	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(thinkCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(advisorCmd)
	rootCmd.AddCommand(fixtureCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// #endregion root

// #region setup

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	if rootFlags.dbPath != "" {
		loaded.Database.Path = rootFlags.dbPath
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config %s:\n%w", rootFlags.configPath, err)
	}
	cfg = loaded

	closer, err := logging.Init(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	closeLog = closer
	return nil
}

func openStore() (*store.Store, error) {
	return store.NewStore(cfg.Database.Path)
}

// openRuntime opens the store and wires a runtime with the configured specialists. The
// returned func releases both.
func openRuntime() (*pipeline.Runtime, *store.Store, func(), error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	specialists, closeSpecialists, err := cfg.Specialists()
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	ctx := cfg.PipelineContext()
	ctx.Specialists = specialists
	rt := pipeline.NewRuntime(st, ctx, cfg.RuntimeConfig())
	return rt, st, func() {
		closeSpecialists()
		st.Close()
	}, nil
}

// #endregion setup

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
