package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal"
)

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a memory workspace",
		Long:  `Create the .mnemo directory with an empty memory database and a default config.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hint, _ := cmd.Flags().GetString("workspace")

			resolver := internal.NewWorkspaceResolver()
			var ws internal.Workspace
			if hint != "" {
				ws = resolver.Resolve(hint)
			} else {
				cwd, err := resolver.Cwd()
				if err != nil {
					return err
				}
				ws = resolver.Resolve(cwd)
			}

			if err := internal.InitWorkspace(ws); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized memory workspace at %s\n", ws.Dir)
			return nil
		},
	}
}
