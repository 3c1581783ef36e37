package internal

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestLinkScoreCombined(t *testing.T) {
	a := testMemory("Met Alice about API redesign, decided GraphQL")
	a.Embedding = []float32{1, 0}
	b := testMemory("Alice prefers GraphQL over REST")
	b.Embedding = []float32{1, 0}

	// cosine 1.0, Jaccard 0.5 over {Alice, API, GraphQL} vs {Alice, GraphQL, REST}
	got := LinkScore(a, b)
	want := 0.7*1.0 + 0.3*0.5
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("LinkScore = %v, want %v", got, want)
	}
}

func TestLinkScoreWithoutEmbeddings(t *testing.T) {
	a := testMemory("Alice and GraphQL")
	b := testMemory("Alice and GraphQL")
	a.Embedding = nil
	b.Embedding = nil

	if got := LinkScore(a, b); got != JaccardOverlap(a.Entities, b.Entities) {
		t.Errorf("without embeddings, score must equal entity overlap; got %v", got)
	}
}

func TestAutoLinkCreatesEdgeAboveThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	existing := testMemory("Met Alice about API redesign, decided GraphQL")
	existing.Embedding = []float32{1, 0, 0}
	if err := store.Insert(ctx, existing); err != nil {
		t.Fatalf("insert: %v", err)
	}

	unrelated := testMemory("watered the plants")
	unrelated.Embedding = []float32{0, 0, 1}
	if err := store.Insert(ctx, unrelated); err != nil {
		t.Fatalf("insert: %v", err)
	}

	incoming := testMemory("Alice prefers GraphQL over REST")
	incoming.Embedding = []float32{0.95, 0.3122499, 0}
	if err := store.Insert(ctx, incoming); err != nil {
		t.Fatalf("insert: %v", err)
	}

	linker := NewAutoLinker(store, 0.8, discardLogger())
	created, err := linker.Link(ctx, incoming)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	edges, err := store.EdgesFor(ctx, incoming.ID)
	if err != nil {
		t.Fatalf("edges for: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	edge := edges[0]
	if edge.Other(incoming.ID) != existing.ID {
		t.Errorf("linked to wrong memory: %+v", edge)
	}
	if !edge.AutoGenerated {
		t.Error("auto-link must be marked auto_generated")
	}
	if edge.Relation != RelationRelatesTo {
		t.Errorf("relation = %q", edge.Relation)
	}
}

func TestAutoLinkRerunCreatesNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testMemory("Kubernetes upgrade notes for the API cluster")
	a.Embedding = []float32{1, 0}
	b := testMemory("Kubernetes API cluster rollback plan")
	b.Embedding = []float32{1, 0}
	for _, m := range []*Memory{a, b} {
		if err := store.Insert(ctx, m); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	linker := NewAutoLinker(store, 0.8, discardLogger())
	first, err := linker.Link(ctx, b)
	if err != nil || first == 0 {
		t.Fatalf("first link: created=%d err=%v", first, err)
	}

	second, err := linker.Link(ctx, b)
	if err != nil {
		t.Fatalf("second link: %v", err)
	}
	if second != 0 {
		t.Errorf("re-linking created %d edges, want 0", second)
	}
}

func TestAutoLinkIgnoresDecayed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	decayed := testMemory("old GraphQL notes")
	decayed.Embedding = []float32{1, 0}
	if err := store.Insert(ctx, decayed); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.SetStatus(ctx, decayed.ID, StatusDecayed); err != nil {
		t.Fatalf("decay: %v", err)
	}

	incoming := testMemory("fresh GraphQL notes")
	incoming.Embedding = []float32{1, 0}
	if err := store.Insert(ctx, incoming); err != nil {
		t.Fatalf("insert: %v", err)
	}

	linker := NewAutoLinker(store, 0.5, discardLogger())
	created, err := linker.Link(ctx, incoming)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if created != 0 {
		t.Errorf("auto-linker must not link to decayed memories, created %d", created)
	}
}
