package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRelateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relate <source-id> <target-id>",
		Short: "Create an explicit edge between two memories",
		Args:  cobra.ExactArgs(2),
		RunE:  runRelate,
	}

	cmd.Flags().StringP("relation", "r", "relates_to", "Relation type (relates_to|contradicts|supersedes|caused_by|part_of|...)")
	cmd.Flags().Float64P("weight", "w", 1.0, "Edge weight")
	return cmd
}

func runRelate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	relation, _ := cmd.Flags().GetString("relation")
	weight, _ := cmd.Flags().GetFloat64("weight")

	out, err := a.engine.Relate(cmd.Context(), args[0], args[1], relation, weight)
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return outputJSON(cmd, out)
	}
	if out.EdgeCreated {
		fmt.Fprintf(cmd.OutOrStdout(), "Linked %s -[%s]-> %s\n", args[0], relation, args[1])
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Edge already exists")
	}
	return nil
}
