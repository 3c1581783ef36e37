package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a notes directory and auto-import markdown changes",
		Long:  `Watch a directory for markdown file changes and import each changed file after a debounce window.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}

	cmd.Flags().Duration("debounce", 2*time.Second, "Debounce window for batching changes")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := args[0]
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	debounce, _ := cmd.Flags().GetDuration("debounce")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for markdown changes...\n", dir)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]bool)

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isMarkdown(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(debounce)
			}
			pending[event.Name] = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)

		case <-timer.C:
			for path := range pending {
				if err := importFile(cmd, a, path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "import %s: %v\n", path, err)
				}
			}
			pending = make(map[string]bool)
		}
	}
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

func importFile(cmd *cobra.Command, a *app, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	chunks := chunkMarkdown(string(data))
	if len(chunks) == 0 {
		return nil
	}

	ids, err := a.engine.ImportBulk(cmd.Context(), chunks)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %d memories\n", filepath.Base(path), len(ids))
	return nil
}
