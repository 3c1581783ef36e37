package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		Long:  `Report memory counts, the importance distribution, and the database size. Never loads the embedding model.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.engine.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if jsonRequested(cmd) {
				return outputJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total:    %d (%d active, %d decayed)\n", out.Total, out.Active, out.Decayed)
			fmt.Fprintf(w, "Types:    %d episodic, %d semantic\n", out.EpisodicCount, out.SemanticCount)
			fmt.Fprintf(w, "DB size:  %d bytes\n", out.DBSizeBytes)
			fmt.Fprintf(w, "Importance: %s\n", sparkline(out.ImportanceHistogram))
			return nil
		},
	}
}

func sparkline(hist [10]int) string {
	levels := []rune(" ▁▂▃▄▅▆▇█")
	max := 0
	for _, n := range hist {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return "(empty)"
	}

	var sb strings.Builder
	for _, n := range hist {
		idx := n * (len(levels) - 1) / max
		sb.WriteRune(levels[idx])
	}
	return sb.String()
}
