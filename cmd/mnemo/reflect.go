package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal"
)

func NewReflectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reflect",
		Short: "Run the maintenance pass",
		Long:  `Prune stale low-value memories, report near-duplicates, promote frequently recalled episodic memories, and clean orphaned edges.`,
		Args:  cobra.NoArgs,
		RunE:  runReflect,
	}

	cmd.Flags().Int("prune-days", 0, "Staleness window in days (default 30)")
	cmd.Flags().Float64("similarity-threshold", 0, "Near-duplicate cosine threshold (default 0.95)")
	return cmd
}

func runReflect(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	pruneDays, _ := cmd.Flags().GetInt("prune-days")
	simThreshold, _ := cmd.Flags().GetFloat64("similarity-threshold")

	report, err := a.engine.Reflect(cmd.Context(), internal.ReflectOptions{
		PruneDays:          pruneDays,
		DuplicateThreshold: simThreshold,
	})
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return outputJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Pruned:       %d\n", report.Pruned)
	fmt.Fprintf(out, "Duplicates:   %d\n", len(report.Duplicates))
	fmt.Fprintf(out, "Promoted:     %d\n", report.Promoted)
	fmt.Fprintf(out, "Edges cleaned: %d\n", report.EdgesCleaned)

	for _, d := range report.Duplicates {
		fmt.Fprintf(out, "\nmerge candidate (%.3f): %s <-> %s\n", d.Similarity, d.AID, d.BID)
		if d.Diff != "" {
			fmt.Fprintln(out, d.Diff)
		}
	}
	return nil
}
