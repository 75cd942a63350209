package ingest

import (
	"context"

	"github.com/kailas-cloud/semdocs/internal/domain"
	domdoc "github.com/kailas-cloud/semdocs/internal/domain/document"
)

// Inserter persists an embedded document under its owner and returns the assigned id.
type Inserter interface {
	Insert(ctx context.Context, owner string, doc domdoc.Document) (string, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
