// Package search runs owner-scoped KNN queries against the document vector index.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/semdocs/internal/db"
	"github.com/kailas-cloud/semdocs/internal/domain"
	"github.com/kailas-cloud/semdocs/internal/domain/match"
	"github.com/kailas-cloud/semdocs/internal/repository/document"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Matcher.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Match returns at most count of owner's documents whose similarity to vector is at least threshold.
// The owner TAG is applied as a pre-filter, so other owners' documents never enter the candidate set.
func (r *Repo) Match(
	ctx context.Context, owner string, vector []float32, threshold float64, count int,
) ([]match.Match, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}

	q := &db.KNNQuery{
		IndexName:   domain.DocumentIndexName,
		VectorField: document.FieldVector,
		Filters:     []db.TagFilter{{Field: document.FieldOwner, Value: owner}},
		Vector:      vector,
		K:           count,
		ReturnFields: []string{
			document.FieldTitle, document.FieldContent, document.FieldCreatedAt,
		},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", domain.DocumentIndexName, err)
	}

	return match.Rank(parseKNNResults(sr), threshold, count), nil
}

func parseKNNResults(sr *db.SearchResult) []match.Match {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	results := make([]match.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, domain.DocumentKeyPrefix)
		results = append(results, match.New(
			id,
			entry.Fields[document.FieldTitle],
			entry.Fields[document.FieldContent],
			entry.Score,
			document.ParseCreatedAt(entry.Fields[document.FieldCreatedAt]),
		))
	}
	return results
}
