package v1

import "github.com/mnemo-dev/mnemo/internal"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	workspace string
	embedder  internal.Embedder
}

// WithWorkspace forces a specific workspace root instead of the
// resolver cascade.
func WithWorkspace(dir string) Option {
	return func(c *clientConfig) {
		c.workspace = dir
	}
}

// WithEmbedder injects an embedder, bypassing the shared model. Used
// by tests and by callers that already hold a loaded model.
func WithEmbedder(e internal.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}
