// Package v1 provides programmatic access to a mnemo memory
// workspace, for callers that want in-process access instead of
// shelling out to the CLI.
package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/mnemo-dev/mnemo/internal"
)

// Client is an in-process handle on one memory workspace.
type Client struct {
	store  *internal.Store
	engine *internal.Engine
}

// New opens (and if needed initializes) a workspace and returns a
// client for it.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	resolver := internal.NewWorkspaceResolver()
	ws := resolver.Resolve(cfg.workspace)
	if err := internal.InitWorkspace(ws); err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	engineCfg, err := internal.LoadConfig(ws)
	if err != nil {
		return nil, err
	}

	store, err := internal.OpenStore(ws.DBPath())
	if err != nil {
		return nil, err
	}

	var provider internal.EmbedderProvider
	if cfg.embedder != nil {
		provider = internal.StaticProvider(cfg.embedder)
	} else {
		provider = func() (internal.Embedder, error) {
			return internal.SharedEmbedder(engineCfg.Embeddings)
		}
	}

	return &Client{
		store:  store,
		engine: internal.NewEngine(store, provider, engineCfg),
	}, nil
}

func (c *Client) Close() error {
	return c.store.Close()
}

// Remember stores a new memory through the full pipeline.
func (c *Client) Remember(ctx context.Context, text string) (*RememberResult, error) {
	out, err := c.engine.Remember(ctx, internal.RememberInput{Text: text})
	if err != nil {
		return nil, fmt.Errorf("remember: %w", err)
	}
	return &RememberResult{
		ID:           out.ID,
		Type:         out.Type,
		Importance:   out.Importance,
		Entities:     out.Entities,
		EdgesCreated: out.EdgesCreated,
		Degraded:     out.Degraded,
	}, nil
}

// Recall ranks stored memories against the query.
func (c *Client) Recall(ctx context.Context, query string, limit int) (*RecallResult, error) {
	out, err := c.engine.Recall(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recall: %w", err)
	}

	result := &RecallResult{Degraded: out.Degraded}
	for _, r := range out.Results {
		result.Hits = append(result.Hits, RecallHit{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Score,
			ViaGraph: r.ViaGraph,
			Type:     r.Type,
		})
	}
	return result, nil
}

// Forget soft-deletes a memory.
func (c *Client) Forget(ctx context.Context, id string) error {
	if _, err := c.engine.Forget(ctx, id); err != nil {
		return fmt.Errorf("forget: %w", err)
	}
	return nil
}

// Relate creates an explicit edge between two memories.
func (c *Client) Relate(ctx context.Context, sourceID, targetID, relation string, weight float64) error {
	if _, err := c.engine.Relate(ctx, sourceID, targetID, relation, weight); err != nil {
		return fmt.Errorf("relate: %w", err)
	}
	return nil
}

// Reflect runs the maintenance pass with default settings.
func (c *Client) Reflect(ctx context.Context) (*ReflectResult, error) {
	report, err := c.engine.Reflect(ctx, internal.ReflectOptions{})
	if err != nil {
		return nil, fmt.Errorf("reflect: %w", err)
	}
	return &ReflectResult{
		Pruned:          report.Pruned,
		DuplicatesFound: len(report.Duplicates),
		Promoted:        report.Promoted,
		EdgesCleaned:    report.EdgesCleaned,
	}, nil
}

// Timeline lists active memories most-recent-first.
func (c *Client) Timeline(ctx context.Context, entity string, since time.Time) ([]Memory, error) {
	memories, err := c.engine.Timeline(ctx, entity, since)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}

	out := make([]Memory, 0, len(memories))
	for _, m := range memories {
		out = append(out, Memory{
			ID:         m.ID,
			Type:       string(m.Type),
			Content:    m.Content,
			Entities:   m.Entities,
			Importance: m.Importance,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}
