package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal"
)

func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all memories and edges as JSON",
		Long:  `Write the full store (embeddings excluded) to stdout for backup or audit. With --commit, the dump is also recorded in the workspace's git snapshot history.`,
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	cmd.Flags().Bool("commit", false, "Record this export in the snapshot history")
	cmd.Flags().StringP("message", "m", "", "Snapshot commit message")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.engine.Export(cmd.Context())
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	if commit, _ := cmd.Flags().GetBool("commit"); commit {
		repo, err := internal.OpenSnapshotRepo(a.workspace)
		if err != nil {
			return err
		}
		message, _ := cmd.Flags().GetString("message")
		hash, err := repo.Commit(data, message)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Snapshot committed: %s\n", hash)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
