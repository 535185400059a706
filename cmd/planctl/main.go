package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planctl",
		Short: "planctl - offline planner for the cabinet line",
		Long: `planctl runs the planner against a snapshot file instead of the order store.
Snapshots are YAML (or JSON) with orders, assignments and an optional reference_date.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(PlanCmd())
	rootCmd.AddCommand(ClockCmd())
	rootCmd.AddCommand(StagesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
