package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal"
)

func NewImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.md>",
		Short: "Bulk-import memories from a markdown file",
		Long:  `Chunk a markdown file into candidate memories and store each one through the full remember pipeline. Use '-' to read from stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	chunks := chunkMarkdown(string(data))
	if len(chunks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import")
		return nil
	}

	ids, err := a.engine.ImportBulk(cmd.Context(), chunks)
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return outputJSON(cmd, map[string]any{"imported": len(ids), "ids": ids})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d memories\n", len(ids))
	return nil
}

// chunkMarkdown is deliberately simple boundary glue: headings and
// blank lines delimit chunks, and a #semantic tag marks a chunk as a
// distilled fact rather than an observation. The engine itself only
// ever sees (text, type) pairs.
func chunkMarkdown(text string) []internal.Chunk {
	var chunks []internal.Chunk
	var current []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(current, "\n"))
		current = current[:0]
		if body == "" {
			return
		}

		typ := internal.TypeEpisodic
		if strings.Contains(body, "#semantic") {
			typ = internal.TypeSemantic
			body = strings.TrimSpace(strings.ReplaceAll(body, "#semantic", ""))
		}
		if body != "" {
			chunks = append(chunks, internal.Chunk{Text: body, Type: typ})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "#semantic"):
			// Headings delimit sections but are not memories themselves.
			flush()
		default:
			current = append(current, line)
		}
	}
	flush()

	return chunks
}
