package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semdocs/internal/domain"
	"github.com/kailas-cloud/semdocs/internal/domain/match"
	"github.com/kailas-cloud/semdocs/internal/domain/query"
	"github.com/kailas-cloud/semdocs/internal/logger"
	"github.com/kailas-cloud/semdocs/internal/metrics"
)

// Outcome is a successful search. An empty Matches is still success.
type Outcome struct {
	Matches     []match.Match
	QueryTokens int
}

// Service answers semantic queries over the caller's own documents.
type Service struct {
	repo  Matcher
	embed Embedder
}

// New creates a search service. embed must be the same chain used for ingestion.
func New(repo Matcher, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search embeds q and returns the caller's documents ranked by similarity.
// Scope comes only from caller.
func (s *Service) Search(ctx context.Context, caller domain.Identity, q query.Query) (Outcome, error) {
	out, err := s.search(ctx, caller, q)
	if err != nil {
		metrics.ObserveSearch(string(domain.KindOf(err)), 0)
		return Outcome{}, err
	}
	metrics.ObserveSearch(metrics.StatusOK, len(out.Matches))
	return out, nil
}

func (s *Service) search(ctx context.Context, caller domain.Identity, q query.Query) (Outcome, error) {
	if caller.IsZero() {
		return Outcome{}, domain.Authenticationf("Invalid authentication token")
	}

	log := logger.FromContext(ctx).With(zap.String("user_id", caller.UserID))
	log.Debug("Semantic search", zap.String("query", q.Text()))

	res, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		return Outcome{}, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFrom(ctx).Record(res)

	matches, err := s.repo.Match(ctx, caller.UserID, res.Embedding, q.Threshold(), q.Count())
	if err != nil {
		return Outcome{}, fmt.Errorf("match documents: %w", searchError(err))
	}

	// Post-filter guards against a backend that over-returns.
	matches = match.Rank(matches, q.Threshold(), q.Count())

	log.Info("Search completed",
		zap.Int("results", len(matches)),
		zap.Int("tokens", res.TotalTokens),
		zap.Float64("threshold", q.Threshold()),
		zap.Int("count", q.Count()),
	)

	return Outcome{Matches: matches, QueryTokens: res.TotalTokens}, nil
}

func searchError(err error) error {
	if errors.Is(err, domain.ErrSearch) {
		return err
	}
	return fmt.Errorf("%w: %w", &domain.Error{Kind: domain.ErrSearch, Message: "Search failed"}, err)
}
