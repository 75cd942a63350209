package search

import (
	"context"

	"github.com/kailas-cloud/semdocs/internal/domain"
	"github.com/kailas-cloud/semdocs/internal/domain/match"
)

// Matcher runs an owner-scoped similarity search.
type Matcher interface {
	Match(ctx context.Context, owner string, vector []float32, threshold float64, count int) ([]match.Match, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
