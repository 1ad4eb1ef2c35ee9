package main

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/alive-runtime/internal/advisor"
)

var advisorCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Run external dialogue specialists",
}

var advisorServeFlags struct {
	script   string
	id       string
	listen   string
	maxSteps int
}

var advisorServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a Starlark specialist over the advisor gRPC service",
	Args:  cobra.NoArgs,
	RunE:  runAdvisorServe,
}

func init() {
	f := advisorServeCmd.Flags()
	f.StringVar(&advisorServeFlags.script, "script", "", "Starlark script defining advise(question, trigger, snapshot) (required)")
	f.StringVar(&advisorServeFlags.id, "id", "script", "specialist id")
	f.StringVar(&advisorServeFlags.listen, "listen", "", "listen address (default from config)")
	f.IntVar(&advisorServeFlags.maxSteps, "max-steps", 0, "execution step budget per call")
	_ = advisorServeCmd.MarkFlagRequired("script")

	advisorCmd.AddCommand(advisorServeCmd)
}

func runAdvisorServe(cmd *cobra.Command, _ []string) error {
	sp, err := advisor.LoadScript(advisorServeFlags.id, advisorServeFlags.script, advisorServeFlags.maxSteps)
	if err != nil {
		return err
	}

	addr := advisorServeFlags.listen
	if addr == "" {
		addr = cfg.Advisor.Listen
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return advisor.Serve(ctx, lis, sp)
}
