package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/alive-runtime/internal/goal"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage the goal snapshot",
}

var goalAddFlags struct {
	status   string
	strength float64
	parent   string
	blockers []string
}

var goalAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Insert or replace a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalAdd,
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals in snapshot order",
	Args:  cobra.NoArgs,
	RunE:  runGoalList,
}

func init() {
	f := goalAddCmd.Flags()
	f.StringVar(&goalAddFlags.status, "status", string(goal.StatusActive), "goal status")
	f.Float64Var(&goalAddFlags.strength, "strength", 0.5, "current strength in [0, 1]")
	f.StringVar(&goalAddFlags.parent, "parent", "", "parent goal id")
	f.StringSliceVar(&goalAddFlags.blockers, "blocker", nil, "blocking goal id (repeatable)")

	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalListCmd)
}

func runGoalAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	g := goal.Goal{
		ID:       args[0],
		Status:   goal.Status(goalAddFlags.status),
		Strength: goal.Strength{Current: goalAddFlags.strength},
	}
	if goalAddFlags.parent != "" || len(goalAddFlags.blockers) > 0 {
		g.Relationships = &goal.Relationships{Parent: goalAddFlags.parent, Blockers: goalAddFlags.blockers}
	}
	if err := st.UpsertGoal(g); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "goal %s: %s (strength %s)\n", g.ID, g.Status, f2(g.Strength.Current))
	return nil
}

func runGoalList(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	goals, err := st.ListGoals()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if rootFlags.jsonOut {
		return writeJSON(out, goals)
	}

	t := newTable(out, "", 3)
	t.AppendHeader([]any{"ID", "Status", "Strength", "Parent"})
	for _, g := range goals {
		parent := ""
		if g.Relationships != nil {
			parent = g.Relationships.Parent
		}
		t.AppendRow([]any{g.ID, g.Status, f2(g.Strength.Current), parent})
	}
	t.Render()
	return nil
}
