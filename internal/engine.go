package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Engine is the facade callers use: every external operation of the
// memory engine lives here, delegating to the store, the auto-linker,
// the recaller, and the reflector.
type Engine struct {
	store     *Store
	embedder  EmbedderProvider
	extract   EntityExtractor
	cfg       *Config
	linker    *AutoLinker
	recaller  *Recaller
	reflector *Reflector
	logger    *log.Logger
}

type EngineOption func(*Engine)

func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithEntityExtractor swaps the entity extraction rules.
func WithEntityExtractor(extract EntityExtractor) EngineOption {
	return func(e *Engine) { e.extract = extract }
}

func NewEngine(store *Store, embedder EmbedderProvider, cfg *Config, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		embedder: embedder,
		extract:  ExtractEntities,
		cfg:      cfg,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.linker = NewAutoLinker(store, cfg.Thresholds.AutoLink, e.logger)
	e.recaller = NewRecaller(store, embedder, cfg.Thresholds.Expand, e.logger)
	e.reflector = NewReflector(store, cfg, e.logger)
	return e
}

func (e *Engine) Store() *Store {
	return e.store
}

type RememberInput struct {
	Text       string
	Type       MemoryType
	Importance *float64
}

type RememberOutput struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Importance   float64  `json:"importance"`
	Entities     []string `json:"entities"`
	EdgesCreated int      `json:"edges_created"`
	Degraded     bool     `json:"degraded,omitempty"`
}

func (e *Engine) Remember(ctx context.Context, input RememberInput) (*RememberOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: missing text", ErrValidation)
	}

	typ := input.Type
	if typ == "" {
		typ = TypeEpisodic
	}
	if typ != TypeEpisodic && typ != TypeSemantic {
		return nil, fmt.Errorf("%w: unknown memory type %q", ErrValidation, typ)
	}
	if input.Importance != nil {
		if err := ValidateImportance(*input.Importance); err != nil {
			return nil, err
		}
	}

	m := NewMemory(input.Text, typ)
	m.Entities = e.extract(input.Text)

	degraded := false
	vec, err := e.embedText(ctx, input.Text)
	switch {
	case err == nil:
		m.Embedding = vec
	case errors.Is(err, ErrModelUnavailable):
		degraded = true
	default:
		return nil, err
	}

	if input.Importance != nil {
		m.Importance = *input.Importance
	} else {
		m.Importance = ScoreImportance(m.Content, m.Entities)
	}

	if err := e.store.Insert(ctx, m); err != nil {
		return nil, err
	}

	edges, err := e.linker.Link(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("auto-link: %w", err)
	}

	e.logger.Debug("remembered", "id", m.ID, "type", m.Type, "edges", edges, "degraded", degraded)

	return &RememberOutput{
		ID:           m.ID,
		Type:         string(m.Type),
		Importance:   m.Importance,
		Entities:     m.Entities,
		EdgesCreated: edges,
		Degraded:     degraded,
	}, nil
}

func (e *Engine) embedText(ctx context.Context, text string) ([]float32, error) {
	emb, err := e.embedder()
	if err != nil {
		return nil, err
	}
	vec, err := emb.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return vec, nil
}

type RecallItem struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
	ViaGraph bool    `json:"via_graph"`
	Type     string  `json:"type"`
}

type RecallOutput struct {
	Results  []RecallItem `json:"results"`
	Degraded bool         `json:"degraded"`
}

func (e *Engine) Recall(ctx context.Context, query string, limit int) (*RecallOutput, error) {
	if limit <= 0 {
		limit = e.cfg.RecallLimit
	}

	set, err := e.recaller.Recall(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	out := &RecallOutput{
		Results:  make([]RecallItem, 0, len(set.Results)),
		Degraded: set.Degraded,
	}
	for _, res := range set.Results {
		out.Results = append(out.Results, RecallItem{
			ID:       res.Memory.ID,
			Content:  res.Memory.Content,
			Score:    res.Score,
			ViaGraph: res.ViaGraph,
			Type:     string(res.Memory.Type),
		})
	}
	return out, nil
}

type ForgetOutput struct {
	Status string `json:"status"`
}

// Forget soft-deletes: the memory stays on disk as decayed, so a
// second forget of the same id succeeds the same way.
func (e *Engine) Forget(ctx context.Context, id string) (*ForgetOutput, error) {
	if _, err := e.store.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := e.store.SetStatus(ctx, id, StatusDecayed); err != nil {
		return nil, err
	}
	return &ForgetOutput{Status: string(StatusDecayed)}, nil
}

type RelateOutput struct {
	EdgeCreated bool `json:"edge_created"`
}

func (e *Engine) Relate(ctx context.Context, sourceID, targetID, relation string, weight float64) (*RelateOutput, error) {
	if sourceID == targetID {
		return nil, fmt.Errorf("%w: cannot relate a memory to itself", ErrValidation)
	}
	if relation == "" {
		relation = RelationRelatesTo
	}

	if _, err := e.store.Get(ctx, sourceID); err != nil {
		return nil, err
	}
	if _, err := e.store.Get(ctx, targetID); err != nil {
		return nil, err
	}

	created, err := e.store.InsertEdge(ctx, Edge{
		SourceID: sourceID,
		TargetID: targetID,
		Relation: relation,
		Weight:   weight,
	})
	if err != nil {
		return nil, err
	}
	return &RelateOutput{EdgeCreated: created}, nil
}

// Unrelate removes the explicit edges between two memories, in both
// directions.
func (e *Engine) Unrelate(ctx context.Context, sourceID, targetID string) error {
	if _, err := e.store.Get(ctx, sourceID); err != nil {
		return err
	}
	if _, err := e.store.Get(ctx, targetID); err != nil {
		return err
	}

	if err := e.store.DeleteEdge(ctx, sourceID, targetID); err != nil {
		return err
	}
	return e.store.DeleteEdge(ctx, targetID, sourceID)
}

func (e *Engine) Reflect(ctx context.Context, opts ReflectOptions) (*ReflectReport, error) {
	return e.reflector.Run(ctx, opts)
}

func (e *Engine) Timeline(ctx context.Context, entity string, since time.Time) ([]*Memory, error) {
	return e.store.Timeline(ctx, entity, since)
}

type StatsOutput struct {
	Total               int     `json:"total"`
	Active              int     `json:"active"`
	Decayed             int     `json:"decayed"`
	EpisodicCount       int     `json:"episodic_count"`
	SemanticCount       int     `json:"semantic_count"`
	ImportanceHistogram [10]int `json:"importance_histogram"`
	DBSizeBytes         int64   `json:"db_size_bytes"`
}

// Stats never touches the embedding model.
func (e *Engine) Stats(ctx context.Context) (*StatsOutput, error) {
	counts, err := e.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	hist, err := e.store.ImportanceHistogram(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{
		Total:               counts.Total,
		Active:              counts.Active,
		Decayed:             counts.Decayed,
		EpisodicCount:       counts.Episodic,
		SemanticCount:       counts.Semantic,
		ImportanceHistogram: hist,
		DBSizeBytes:         e.store.SizeBytes(),
	}, nil
}

type ExportedMemory struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Content        string    `json:"content"`
	Entities       []string  `json:"entities"`
	Importance     float64   `json:"importance"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	AccessCount    int       `json:"access_count"`
	Status         string    `json:"status"`
}

type ExportedEdge struct {
	SourceID      string  `json:"source_id"`
	TargetID      string  `json:"target_id"`
	Relation      string  `json:"relation"`
	Weight        float64 `json:"weight"`
	AutoGenerated bool    `json:"auto_generated"`
}

type ExportOutput struct {
	Memories []ExportedMemory `json:"memories"`
	Edges    []ExportedEdge   `json:"edges"`
}

// Export dumps every memory and edge for backup or audit. Embeddings
// are deliberately excluded: they are derived data, large, and tied to
// the model that produced them.
func (e *Engine) Export(ctx context.Context) (*ExportOutput, error) {
	memories, err := e.store.All(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.AllEdges(ctx)
	if err != nil {
		return nil, err
	}

	out := &ExportOutput{
		Memories: make([]ExportedMemory, 0, len(memories)),
		Edges:    make([]ExportedEdge, 0, len(edges)),
	}
	for _, m := range memories {
		out.Memories = append(out.Memories, ExportedMemory{
			ID:             m.ID,
			Type:           string(m.Type),
			Content:        m.Content,
			Entities:       m.Entities,
			Importance:     m.Importance,
			CreatedAt:      m.CreatedAt,
			LastAccessedAt: m.LastAccessedAt,
			AccessCount:    m.AccessCount,
			Status:         string(m.Status),
		})
	}
	for _, edge := range edges {
		out.Edges = append(out.Edges, ExportedEdge{
			SourceID:      edge.SourceID,
			TargetID:      edge.TargetID,
			Relation:      edge.Relation,
			Weight:        edge.Weight,
			AutoGenerated: edge.AutoGenerated,
		})
	}
	return out, nil
}

type Chunk struct {
	Text string     `json:"text"`
	Type MemoryType `json:"type"`
}

// ImportBulk is the ingestion path for external markdown sources: each
// chunk goes through exactly the remember pipeline, auto-linking
// included.
func (e *Engine) ImportBulk(ctx context.Context, chunks []Chunk) ([]string, error) {
	ids := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := e.Remember(ctx, RememberInput{Text: chunk.Text, Type: chunk.Type})
		if err != nil {
			return ids, fmt.Errorf("chunk %d: %w", i, err)
		}
		ids = append(ids, out.ID)
	}
	return ids, nil
}
