package internal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Composite score weights: similarity dominates, importance and
// recency break ties between equally relevant memories.
const (
	similarityWeight = 0.5
	importanceWeight = 0.3
	recencyWeight    = 0.2

	DefaultRecallLimit = 7
)

type RecallResult struct {
	Memory   *Memory
	Score    float64
	ViaGraph bool
}

type RecallSet struct {
	Results  []RecallResult
	Degraded bool
}

// Recaller ranks stored memories against a query and expands
// high-confidence hits through the knowledge graph.
type Recaller struct {
	store    *Store
	embedder EmbedderProvider
	expand   float64
	logger   *log.Logger
	now      func() time.Time
}

func NewRecaller(store *Store, embedder EmbedderProvider, expandThreshold float64, logger *log.Logger) *Recaller {
	return &Recaller{
		store:    store,
		embedder: embedder,
		expand:   expandThreshold,
		logger:   logger,
		now:      time.Now,
	}
}

// Recall never fails on an empty result; it only surfaces storage
// errors. When the model is unavailable it falls back to keyword
// matching and flags the set as degraded.
func (r *Recaller) Recall(ctx context.Context, query string, limit int) (*RecallSet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrValidation)
	}
	if limit <= 0 {
		limit = DefaultRecallLimit
	}

	active, err := r.store.Scan(ctx, StatusActive)
	if err != nil {
		return nil, err
	}

	set := &RecallSet{}

	queryVec, err := r.queryVector(ctx, query)
	switch {
	case err == nil:
		set.Results = scoreBySimilarity(active, queryVec, r.now().UTC())
	case errors.Is(err, ErrModelUnavailable):
		set.Degraded = true
		set.Results = scoreByKeyword(active, query, r.now().UTC())
	default:
		return nil, err
	}

	sort.SliceStable(set.Results, func(i, j int) bool {
		return set.Results[i].Score > set.Results[j].Score
	})
	if len(set.Results) > limit {
		set.Results = set.Results[:limit]
	}

	if err := r.expandGraph(ctx, set); err != nil {
		return nil, err
	}

	for _, res := range set.Results {
		if res.ViaGraph {
			continue
		}
		if err := r.store.UpdateAccess(ctx, res.Memory.ID); err != nil {
			return nil, fmt.Errorf("access bookkeeping: %w", err)
		}
	}

	return set, nil
}

func (r *Recaller) queryVector(ctx context.Context, query string) ([]float32, error) {
	emb, err := r.embedder()
	if err != nil {
		return nil, err
	}
	vec, err := emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return vec, nil
}

func scoreBySimilarity(active []*Memory, queryVec []float32, now time.Time) []RecallResult {
	results := make([]RecallResult, 0, len(active))
	for _, m := range active {
		if m.Embedding == nil {
			continue
		}
		score := similarityWeight*CosineSimilarity(queryVec, m.Embedding) +
			importanceWeight*m.Importance +
			recencyWeight*RecencyDecay(m.LastAccessedAt, now)
		results = append(results, RecallResult{Memory: m, Score: score})
	}
	return results
}

// scoreByKeyword is the degraded path: matches get the full similarity
// term so importance and recency still order them on the same scale.
func scoreByKeyword(active []*Memory, query string, now time.Time) []RecallResult {
	needle := strings.ToLower(query)
	var results []RecallResult
	for _, m := range active {
		if !strings.Contains(strings.ToLower(m.Content), needle) {
			continue
		}
		score := similarityWeight +
			importanceWeight*m.Importance +
			recencyWeight*RecencyDecay(m.LastAccessedAt, now)
		results = append(results, RecallResult{Memory: m, Score: score})
	}
	return results
}

// RecencyDecay maps hours since last access into (0,1]: 1 for
// just-touched memories, shrinking logarithmically.
func RecencyDecay(lastAccess, now time.Time) float64 {
	hours := now.Sub(lastAccess).Hours()
	if hours < 0 {
		hours = 0
	}
	return 1 / (1 + math.Log(1+hours))
}

// expandGraph pulls in neighbors of results at or above the expansion
// threshold. Neighbors are graph-justified rather than re-scored: they
// carry the linking edge's weight and the via-graph flag.
func (r *Recaller) expandGraph(ctx context.Context, set *RecallSet) error {
	inSet := make(map[string]bool, len(set.Results))
	for _, res := range set.Results {
		inSet[res.Memory.ID] = true
	}

	for _, res := range set.Results {
		if res.ViaGraph || res.Score < r.expand {
			continue
		}

		edges, err := r.store.EdgesFor(ctx, res.Memory.ID)
		if err != nil {
			return err
		}

		for _, edge := range edges {
			neighborID := edge.Other(res.Memory.ID)
			if inSet[neighborID] {
				continue
			}

			neighbor, err := r.store.Get(ctx, neighborID)
			if errors.Is(err, ErrNotFound) {
				// Dangling edge; reflection will clean it up.
				continue
			}
			if err != nil {
				return err
			}
			if neighbor.Status != StatusActive {
				continue
			}

			inSet[neighborID] = true
			set.Results = append(set.Results, RecallResult{
				Memory:   neighbor,
				Score:    edge.Weight,
				ViaGraph: true,
			})
			r.logger.Debug("graph expansion", "from", res.Memory.ID, "pulled", neighborID)
		}
	}
	return nil
}
