package internal

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T, provider EmbedderProvider) *Engine {
	t.Helper()
	return NewEngine(newTestStore(t), provider, DefaultConfig())
}

func TestRememberValidation(t *testing.T) {
	engine := newTestEngine(t, NoModelProvider())
	ctx := context.Background()

	cases := []struct {
		name  string
		input RememberInput
	}{
		{"empty text", RememberInput{Text: "  "}},
		{"unknown type", RememberInput{Text: "note", Type: MemoryType("procedural")}},
		{"importance too high", RememberInput{Text: "note", Importance: toPtr(1.5)}},
		{"importance negative", RememberInput{Text: "note", Importance: toPtr(-0.1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Remember(ctx, tc.input)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func toPtr(f float64) *float64 { return &f }

func TestRememberDegradedWithoutModel(t *testing.T) {
	engine := newTestEngine(t, NoModelProvider())
	ctx := context.Background()

	out, err := engine.Remember(ctx, RememberInput{Text: "Alice owns the GraphQL gateway"})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if !out.Degraded {
		t.Error("remember without a model must report degraded")
	}
	if out.Type != string(TypeEpisodic) {
		t.Errorf("default type = %q, want episodic", out.Type)
	}
	if out.Importance <= 0 || out.Importance > 1 {
		t.Errorf("heuristic importance out of range: %v", out.Importance)
	}

	got, err := engine.Store().Get(ctx, out.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Embedding != nil {
		t.Error("degraded remember must store no embedding")
	}
	if len(got.Entities) == 0 {
		t.Error("entity extraction must still run without a model")
	}
}

func TestRememberSuppliedImportanceWins(t *testing.T) {
	engine := newTestEngine(t, NoModelProvider())

	out, err := engine.Remember(context.Background(), RememberInput{
		Text:       "pager escalates to the platform team after 15 minutes",
		Importance: toPtr(0.9),
	})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if out.Importance != 0.9 {
		t.Errorf("importance = %v, want the supplied 0.9", out.Importance)
	}
}

func TestForgetIsIdempotent(t *testing.T) {
	engine := newTestEngine(t, NoModelProvider())
	ctx := context.Background()

	out, err := engine.Remember(ctx, RememberInput{Text: "temporary access token location"})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}

	for i := 0; i < 2; i++ {
		res, err := engine.Forget(ctx, out.ID)
		if err != nil {
			t.Fatalf("forget #%d: %v", i+1, err)
		}
		if res.Status != string(StatusDecayed) {
			t.Errorf("forget #%d status = %q", i+1, res.Status)
		}
	}

	got, err := engine.Store().Get(ctx, out.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusDecayed {
		t.Error("forgotten memory must be decayed, not deleted")
	}
}

func TestForgetUnknownID(t *testing.T) {
	engine := newTestEngine(t, NoModelProvider())

	_, err := engine.Forget(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRelate(t *testing.T) {
	engine := newTestEngine(t, NoModelProvider())
	ctx := context.Background()

	a, err := engine.Remember(ctx, RememberInput{Text: "cause: connection pool exhausted"})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	b, err := engine.Remember(ctx, RememberInput{Text: "effect: checkout latency spiked"})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}

	if _, err := engine.Relate(ctx, a.ID, a.ID, RelationCausedBy, 1); !errors.Is(err, ErrValidation) {
		t.Errorf("self-relation: expected ErrValidation, got %v", err)
	}
	if _, err := engine.Relate(ctx, a.ID, "missing", RelationCausedBy, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing target: expected ErrNotFound, got %v", err)
	}

	out, err := engine.Relate(ctx, b.ID, a.ID, RelationCausedBy, 0.9)
	if err != nil {
		t.Fatalf("relate: %v", err)
	}
	if !out.EdgeCreated {
		t.Error("first relate must create the edge")
	}

	out, err = engine.Relate(ctx, b.ID, a.ID, RelationCausedBy, 0.9)
	if err != nil {
		t.Fatalf("repeat relate: %v", err)
	}
	if out.EdgeCreated {
		t.Error("repeated relate must be a no-op")
	}
}

func TestUnrelateRemovesBothDirections(t *testing.T) {
	engine := newTestEngine(t, NoModelProvider())
	ctx := context.Background()

	a, err := engine.Remember(ctx, RememberInput{Text: "schema proposal draft"})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	b, err := engine.Remember(ctx, RememberInput{Text: "schema proposal, final version"})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}

	if _, err := engine.Relate(ctx, b.ID, a.ID, RelationSupersedes, 1); err != nil {
		t.Fatalf("relate: %v", err)
	}
	if _, err := engine.Relate(ctx, a.ID, b.ID, RelationRelatesTo, 0.5); err != nil {
		t.Fatalf("relate: %v", err)
	}

	if err := engine.Unrelate(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("unrelate: %v", err)
	}

	edges, err := engine.Store().EdgesFor(ctx, a.ID)
	if err != nil {
		t.Fatalf("edges for: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("edges survived unlink: %+v", edges)
	}

	if err := engine.Unrelate(ctx, a.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing endpoint: expected ErrNotFound, got %v", err)
	}
}

// panicProvider fails the test if anything tries to load the model.
func panicProvider(t *testing.T) EmbedderProvider {
	return func() (Embedder, error) {
		t.Fatal("operation must not touch the embedding model")
		return nil, nil
	}
}

func TestStatsNeverLoadsModel(t *testing.T) {
	engine := newTestEngine(t, panicProvider(t))
	ctx := context.Background()

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 0 || stats.Active != 0 {
		t.Errorf("empty store stats: %+v", stats)
	}
}

func TestExportNeverLoadsModel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := testMemory("export me")
	m.Embedding = []float32{1, 0}
	if err := store.Insert(ctx, m); err != nil {
		t.Fatalf("insert: %v", err)
	}

	engine := NewEngine(store, panicProvider(t), DefaultConfig())
	out, err := engine.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(out.Memories) != 1 {
		t.Fatalf("exported %d memories, want 1", len(out.Memories))
	}
	if out.Memories[0].Content != m.Content {
		t.Errorf("content mismatch: %q", out.Memories[0].Content)
	}
}

func TestImportBulk(t *testing.T) {
	engine := newTestEngine(t, NoModelProvider())
	ctx := context.Background()

	ids, err := engine.ImportBulk(ctx, []Chunk{
		{Text: "sprint goal: ship the billing export"},
		{Text: "decision: keep invoices in Postgres", Type: TypeSemantic},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("imported %d chunks, want 2", len(ids))
	}

	got, err := engine.Store().Get(ctx, ids[1])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Type != TypeSemantic {
		t.Errorf("chunk type not honored: %v", got.Type)
	}
}

func TestImportBulkFailsFast(t *testing.T) {
	engine := newTestEngine(t, NoModelProvider())

	ids, err := engine.ImportBulk(context.Background(), []Chunk{
		{Text: "good chunk"},
		{Text: "   "},
		{Text: "never reached"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "chunk 1") {
		t.Errorf("error should name the failing chunk: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("chunks before the failure should be stored, got %d ids", len(ids))
	}
}

// End-to-end: remembering related notes links them automatically, and a
// confident recall drags the neighbor in through the graph.
func TestRememberAutoLinksAndRecallExpands(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := "Met Alice about the API redesign, decided on GraphQL"
	second := "Alice prefers GraphQL over REST for the public API"
	query := "What did Alice say about the API?"

	mock := NewMockEmbedder(3)
	mock.Pin(first, []float32{1, 0, 0})
	mock.Pin(second, []float32{0.95, 0.3122499, 0})
	mock.Pin(query, []float32{1, 0, 0})

	engine := NewEngine(store, StaticProvider(mock), DefaultConfig())

	out1, err := engine.Remember(ctx, RememberInput{Text: first})
	if err != nil {
		t.Fatalf("remember first: %v", err)
	}
	if out1.EdgesCreated != 0 {
		t.Fatalf("first memory has nothing to link to, created %d", out1.EdgesCreated)
	}

	out2, err := engine.Remember(ctx, RememberInput{Text: second})
	if err != nil {
		t.Fatalf("remember second: %v", err)
	}
	if out2.EdgesCreated != 1 {
		t.Fatalf("expected auto-link to the first memory, created %d", out2.EdgesCreated)
	}

	recall, err := engine.Recall(ctx, query, 1)
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if recall.Degraded {
		t.Fatal("recall should not be degraded")
	}
	if len(recall.Results) != 2 {
		t.Fatalf("expected direct hit plus graph neighbor, got %d", len(recall.Results))
	}

	direct, pulled := recall.Results[0], recall.Results[1]
	if direct.ID != out1.ID || direct.ViaGraph {
		t.Errorf("direct hit wrong: %+v", direct)
	}
	if pulled.ID != out2.ID || !pulled.ViaGraph {
		t.Errorf("graph neighbor wrong: %+v", pulled)
	}
	if pulled.Score < 0.8 || pulled.Score > 1 {
		t.Errorf("neighbor score should carry the edge weight, got %v", pulled.Score)
	}
}
