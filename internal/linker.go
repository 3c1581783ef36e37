package internal

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// AutoLinker creates graph edges between a newly stored memory and the
// existing active set when similarity plus entity overlap clears the
// configured threshold.
type AutoLinker struct {
	store     *Store
	threshold float64
	logger    *log.Logger
}

func NewAutoLinker(store *Store, threshold float64, logger *log.Logger) *AutoLinker {
	return &AutoLinker{
		store:     store,
		threshold: threshold,
		logger:    logger,
	}
}

// Link runs synchronously as part of remember and returns the number
// of edges created. Re-running for the same memory creates nothing new
// because edge identity is (source, target, relation).
func (l *AutoLinker) Link(ctx context.Context, m *Memory) (int, error) {
	existing, err := l.store.Scan(ctx, StatusActive)
	if err != nil {
		return 0, fmt.Errorf("scan for auto-link: %w", err)
	}

	created := 0
	for _, other := range existing {
		if other.ID == m.ID {
			continue
		}

		score := LinkScore(m, other)
		if score < l.threshold {
			continue
		}

		ok, err := l.store.InsertEdge(ctx, Edge{
			SourceID:      m.ID,
			TargetID:      other.ID,
			Relation:      RelationRelatesTo,
			Weight:        score,
			AutoGenerated: true,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
			l.logger.Debug("auto-linked", "source", m.ID, "target", other.ID, "score", score)
		}
	}

	return created, nil
}

// LinkScore combines embedding similarity with entity overlap. Without
// embeddings on both sides, entity overlap alone has to clear the bar,
// which keeps keyword-mode linking conservative.
func LinkScore(a, b *Memory) float64 {
	overlap := JaccardOverlap(a.Entities, b.Entities)
	if a.Embedding == nil || b.Embedding == nil {
		return overlap
	}
	return 0.7*CosineSimilarity(a.Embedding, b.Embedding) + 0.3*overlap
}
