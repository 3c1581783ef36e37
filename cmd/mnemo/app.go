package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal"
)

// app holds everything a command invocation needs: the resolved
// workspace, the open store, and the engine wired with the lazy
// process-wide embedder.
type app struct {
	workspace internal.Workspace
	config    *internal.Config
	store     *internal.Store
	engine    *internal.Engine
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// openApp resolves the workspace from flags and wires the engine. The
// embedder is a lazy provider, so commands that never embed (stats,
// export) never load the model.
func openApp(cmd *cobra.Command) (*app, error) {
	hint, _ := cmd.Flags().GetString("workspace")

	resolver := internal.NewWorkspaceResolver()
	ws := resolver.Resolve(hint)
	if !ws.Exists() {
		return nil, fmt.Errorf("workspace not initialized: %s (run 'mnemo init')", ws.Dir)
	}

	cfg, err := internal.LoadConfig(ws)
	if err != nil {
		return nil, err
	}

	store, err := internal.OpenStore(ws.DBPath())
	if err != nil {
		return nil, err
	}

	embedder := func() (internal.Embedder, error) {
		return internal.SharedEmbedder(cfg.Embeddings)
	}

	engine := internal.NewEngine(store, embedder, cfg,
		internal.WithLogger(newLogger(cmd)))

	return &app{
		workspace: ws,
		config:    cfg,
		store:     store,
		engine:    engine,
	}, nil
}

func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.New(os.Stderr)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonRequested(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}
