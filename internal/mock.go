package internal

import (
	"context"
	"hash/fnv"
	"strings"
)

var _ Embedder = (*MockEmbedder)(nil)

// MockEmbedder produces deterministic embeddings without a model:
// tokens are hashed into buckets, so texts sharing words have positive
// cosine similarity. Exact vectors can be pinned per text for boundary
// tests.
type MockEmbedder struct {
	dimension int
	pinned    map[string][]float32
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{
		dimension: dimension,
		pinned:    make(map[string][]float32),
	}
}

// Pin fixes the vector returned for an exact text.
func (m *MockEmbedder) Pin(text string, vec []float32) {
	m.pinned[text] = vec
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := m.pinned[text]; ok {
		return vec, nil
	}

	vec := make([]float32, m.dimension)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%m.dimension] += 1
	}

	return l2Normalize(vec), nil
}

func (m *MockEmbedder) Dimension() int {
	return m.dimension
}

func (m *MockEmbedder) Close() error {
	return nil
}

// unavailableProvider is the degraded-mode provider used in tests and
// when no backend is configured.
func unavailableProvider() (Embedder, error) {
	return nil, ErrModelUnavailable
}

// StaticProvider wraps an already-constructed embedder.
func StaticProvider(e Embedder) EmbedderProvider {
	return func() (Embedder, error) { return e, nil }
}

// NoModelProvider always reports the model as unavailable.
func NoModelProvider() EmbedderProvider {
	return unavailableProvider
}
