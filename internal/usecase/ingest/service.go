package ingest

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semdocs/internal/domain"
	domdoc "github.com/kailas-cloud/semdocs/internal/domain/document"
	"github.com/kailas-cloud/semdocs/internal/logger"
	"github.com/kailas-cloud/semdocs/internal/metrics"
)

const titleLogPrefix = 50

// Receipt describes a persisted document.
type Receipt struct {
	DocumentID string
	TokensUsed int
	Dimensions int
}

// Service validates, embeds and persists documents.
type Service struct {
	repo       Inserter
	embed      Embedder
	dimensions int
}

// New creates an ingestion service. dimensions is the configured model dimensionality.
func New(repo Inserter, embed Embedder, dimensions int) *Service {
	return &Service{repo: repo, embed: embed, dimensions: dimensions}
}

// Ingest stores (title, content) for caller. Validation runs before any external call;
// an embedding failure aborts before anything is written.
func (s *Service) Ingest(ctx context.Context, caller domain.Identity, title, content string) (Receipt, error) {
	receipt, err := s.ingest(ctx, caller, title, content)
	metrics.ObserveIngest(statusOf(err))
	return receipt, err
}

func (s *Service) ingest(ctx context.Context, caller domain.Identity, title, content string) (Receipt, error) {
	if caller.IsZero() {
		return Receipt{}, domain.Authenticationf("Invalid authentication token")
	}

	doc, err := domdoc.New(title, content)
	if err != nil {
		return Receipt{}, err
	}

	log := logger.FromContext(ctx).With(
		zap.String("user_id", caller.UserID),
		zap.String("title", truncate(title, titleLogPrefix)),
		zap.Int("content_length", utf8.RuneCountInString(content)),
	)

	res, err := s.embed.Embed(ctx, doc.Content())
	if err != nil {
		return Receipt{}, fmt.Errorf("embed content: %w", err)
	}
	domain.UsageFrom(ctx).Record(res)

	if s.dimensions > 0 && len(res.Embedding) != s.dimensions {
		log.Warn("Embedding dimension mismatch",
			zap.Int("expected", s.dimensions), zap.Int("got", len(res.Embedding)))
		return Receipt{}, &domain.Error{
			Kind: domain.ErrVectorDimMismatch,
			Message: fmt.Sprintf("Failed to save document: embedding has %d dimensions, expected %d",
				len(res.Embedding), s.dimensions),
		}
	}

	id, err := s.repo.Insert(ctx, caller.UserID, doc.WithEmbedding(res.Embedding))
	if err != nil {
		return Receipt{}, fmt.Errorf("insert document: %w", persistenceError(err))
	}

	log.Info("Document ingested",
		zap.String("document_id", id),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("tokens", res.TotalTokens),
	)

	return Receipt{DocumentID: id, TokensUsed: res.TotalTokens, Dimensions: len(res.Embedding)}, nil
}

// persistenceError classifies a datastore failure, keeping the cause in the chain for logs.
func persistenceError(err error) error {
	if errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", &domain.Error{
		Kind:    domain.ErrPersistence,
		Message: "Failed to save document",
	}, err)
}

func statusOf(err error) string {
	if err == nil {
		return metrics.StatusOK
	}
	return string(domain.KindOf(err))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
