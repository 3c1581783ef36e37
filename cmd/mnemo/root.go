package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mnemo",
		Short:         "Persistent vector-graph memory for autonomous agents",
		Long:          `A hybrid vector-graph memory engine: embedding-scored recall, an implicit knowledge graph with auto-linking, and a decay/promotion lifecycle.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	addSubcommands(rootCmd)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("workspace", "", "Workspace directory (default: nearest .mnemo, else ~/.mnemo)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func addSubcommands(root *cobra.Command) {
	root.AddCommand(
		NewInitCmd(),
		NewRememberCmd(),
		NewRecallCmd(),
		NewForgetCmd(),
		NewRelateCmd(),
		NewUnlinkCmd(),
		NewReflectCmd(),
		NewTimelineCmd(),
		NewStatsCmd(),
		NewExportCmd(),
		NewSnapshotsCmd(),
		NewImportCmd(),
		NewWatchCmd(),
	)
}
