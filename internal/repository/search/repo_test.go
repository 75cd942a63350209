package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/semdocs/internal/db"
)

// --- Mocks ---

type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	calls       int
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.calls++
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testVector() []float32 {
	return []float32{0.1, 0.1, 0.1, 0.1}
}

// --- Tests ---

func TestMatch_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "semdocs:doc:idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		if q.K != 10 {
			t.Errorf("unexpected K: %d", q.K)
		}
		if len(q.Filters) != 1 || q.Filters[0].Field != "owner" || q.Filters[0].Value != "user-a" {
			t.Errorf("owner filter missing: %+v", q.Filters)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:   "semdocs:doc:doc-2",
					Score: 0.544,
					Fields: map[string]string{
						"title": "Rust", "content": "ownership rules", "created_at": "1767225600000",
					},
				},
				{
					Key:   "semdocs:doc:doc-1",
					Score: 0.877,
					Fields: map[string]string{
						"title": "Go", "content": "channels", "created_at": "1767225600000",
					},
				},
			},
		}, nil
	}

	results, err := repo.Match(context.Background(), "user-a", testVector(), 0.5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID() != "doc-1" || results[0].Title() != "Go" {
		t.Errorf("first result = %s/%s, want doc-1/Go", results[0].ID(), results[0].Title())
	}
	if results[0].CreatedAt().IsZero() {
		t.Error("created_at should be parsed")
	}
}

func TestMatch_FiltersBelowThreshold(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "semdocs:doc:a", Score: 0.9},
			{Key: "semdocs:doc:b", Score: 0.3},
		}}, nil
	}

	results, err := repo.Match(context.Background(), "user-a", testVector(), 0.5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID() != "a" {
		t.Errorf("expected only a, got %d results", len(results))
	}
}

func TestMatch_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)

	results, err := repo.Match(context.Background(), "user-a", testVector(), 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestMatch_RequiresOwner(t *testing.T) {
	repo, ms := newTestRepo(t)

	if _, err := repo.Match(context.Background(), "", testVector(), 0, 5); err == nil {
		t.Fatal("expected error for empty owner")
	}
	if ms.calls != 0 {
		t.Errorf("unscoped search must not reach the store, got %d calls", ms.calls)
	}
}

func TestMatch_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	storeErr := errors.New("FT.SEARCH: timeout")
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, storeErr
	}

	if _, err := repo.Match(context.Background(), "user-a", testVector(), 0, 5); !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
