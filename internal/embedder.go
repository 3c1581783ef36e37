package internal

import (
	"context"
	"fmt"
	"sync"
)

// Embedder produces fixed-dimension vectors for text. Implementations
// must be safe for concurrent use; the loaded model is read-only after
// initialization.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Close() error
}

// EmbedderProvider resolves an Embedder lazily so callers that never
// embed (stats, export) never pay the model-load cost. A provider
// returns ErrModelUnavailable when no model can be loaded; callers
// degrade to keyword matching instead of failing.
type EmbedderProvider func() (Embedder, error)

var (
	sharedMu       sync.Mutex
	sharedEmbedder Embedder
	sharedErr      error
	sharedLoaded   bool
)

// SharedEmbedder returns the process-wide embedder, loading the model
// on first call. Load failure is cached: the one-time cost of probing
// for a model is not repeated per call.
func SharedEmbedder(cfg EmbeddingsConfig) (Embedder, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedLoaded {
		return sharedEmbedder, sharedErr
	}
	sharedLoaded = true

	emb, err := NewONNXEmbedder(ONNXConfig{
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		Dimension:     cfg.Dimension,
	})
	if err != nil {
		sharedErr = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		return nil, sharedErr
	}

	sharedEmbedder = emb
	return sharedEmbedder, nil
}
