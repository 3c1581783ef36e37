package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal"
)

func NewRememberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remember <text>",
		Short: "Store a new memory",
		Long:  `Store a memory: it is embedded, scored for importance, and auto-linked into the knowledge graph.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRemember,
	}

	cmd.Flags().StringP("type", "t", "episodic", "Memory type (episodic|semantic)")
	cmd.Flags().Float64P("importance", "i", -1, "Importance in [0,1] (default: heuristic)")
	return cmd
}

func runRemember(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	typeFlag, _ := cmd.Flags().GetString("type")
	typ, err := internal.ParseMemoryType(typeFlag)
	if err != nil {
		return err
	}

	input := internal.RememberInput{
		Text: strings.Join(args, " "),
		Type: typ,
	}
	if imp, _ := cmd.Flags().GetFloat64("importance"); imp >= 0 {
		input.Importance = &imp
	}

	out, err := a.engine.Remember(cmd.Context(), input)
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return outputJSON(cmd, out)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (%s, importance %.2f, %d auto-links)\n",
		out.ID, out.Type, out.Importance, out.EdgesCreated)
	if len(out.Entities) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Entities: %s\n", strings.Join(out.Entities, ", "))
	}
	if out.Degraded {
		fmt.Fprintln(cmd.OutOrStdout(), "Note: stored without embedding (model unavailable)")
	}
	return nil
}
