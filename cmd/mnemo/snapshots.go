package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal"
)

func NewSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List the export snapshot history",
		Long:  `Show the git-versioned export snapshots recorded with 'mnemo export --commit', newest first.`,
		Args:  cobra.NoArgs,
		RunE:  runSnapshots,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum snapshots to list (0 for all)")
	return cmd
}

func runSnapshots(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	repo, err := internal.OpenSnapshotRepo(a.workspace)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	commits, err := repo.Log(limit)
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return outputJSON(cmd, commits)
	}

	if len(commits) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No snapshots yet (run 'mnemo export --commit')")
		return nil
	}
	for _, c := range commits {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
			c.Hash[:8], c.Timestamp.Format("2006-01-02 15:04"),
			truncate(strings.TrimSpace(c.Message), 60))
	}
	return nil
}
