package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <source-id> <target-id>",
		Short: "Remove the edges between two memories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.engine.Unrelate(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s and %s\n", args[0], args[1])
			return nil
		},
	}
}
