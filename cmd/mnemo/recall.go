package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall <query>",
		Short: "Recall memories relevant to a query",
		Long:  `Rank stored memories against a query by similarity, importance, and recency; high-confidence hits pull in their graph neighbors.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRecall,
	}

	cmd.Flags().IntP("limit", "n", 0, "Maximum scored results (default 7)")
	return cmd
}

func runRecall(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	out, err := a.engine.Recall(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return outputJSON(cmd, out)
	}

	if out.Degraded {
		fmt.Fprintln(cmd.OutOrStdout(), "(keyword fallback: embedding model unavailable)")
	}
	if len(out.Results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No memories found")
		return nil
	}

	for _, r := range out.Results {
		marker := " "
		if r.ViaGraph {
			marker = "~"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %.4f  [%s] %s  %s\n",
			marker, r.Score, r.Type, r.ID, truncate(r.Content, 80))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
