package domain

import "context"

// DefaultEmbeddingModel is the model used for both documents and queries unless configured otherwise.
const DefaultEmbeddingModel = "text-embedding-3-small"

// DefaultEmbeddingDimensions is the output dimensionality of DefaultEmbeddingModel.
const DefaultEmbeddingDimensions = 1536

// Embedder is the shared text vectorization contract between layers.
// Documents and queries must go through the same Embedder so their vectors are comparable.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
