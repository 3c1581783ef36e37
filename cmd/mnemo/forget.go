package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <id>",
		Short: "Soft-delete a memory",
		Long:  `Mark a memory as decayed. It is excluded from recall but retained on disk.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.engine.Forget(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonRequested(cmd) {
				return outputJSON(cmd, out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Memory %s is now %s\n", args[0], out.Status)
			return nil
		},
	}
}
