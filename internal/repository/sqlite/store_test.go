package sqlite

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	domdoc "github.com/kailas-cloud/semdocs/internal/domain/document"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func embedded(t *testing.T, title string, vec []float32) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(title, "content long enough for validation")
	if err != nil {
		t.Fatal(err)
	}
	return doc.WithEmbedding(vec)
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) == 0 || len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestInsertAndMatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "user-a", embedded(t, "Go", []float32{1, 0, 0}))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}
	if _, err := s.Insert(ctx, "user-a", embedded(t, "Rust", []float32{0.6, 0.8, 0})); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	matches, err := s.Match(ctx, "user-a", []float32{1, 0, 0}, 0, 10)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID() != id || matches[0].Similarity() != 1 {
		t.Errorf("best match = %s (%v), want %s (1)", matches[0].ID(), matches[0].Similarity(), id)
	}
	if matches[1].Similarity() < 0.59 || matches[1].Similarity() > 0.61 {
		t.Errorf("second similarity = %v, want ~0.6", matches[1].Similarity())
	}
	if matches[0].CreatedAt().IsZero() {
		t.Error("created_at should round-trip")
	}
}

func TestMatch_ThresholdAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, v := range [][]float32{{1, 0}, {0.9, 0.1}, {0, 1}} {
		if _, err := s.Insert(ctx, "user-a", embedded(t, "doc", v)); err != nil {
			t.Fatal(err)
		}
	}

	exact, err := s.Match(ctx, "user-a", []float32{1, 0}, 1.0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(exact) != 1 {
		t.Errorf("threshold 1.0 should keep only the identical vector, got %d", len(exact))
	}

	one, err := s.Match(ctx, "user-a", []float32{1, 0}, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 {
		t.Errorf("count 1 should return one match, got %d", len(one))
	}
}

func TestMatch_OwnerIsolation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, "user-a", embedded(t, "secret", []float32{1, 0})); err != nil {
		t.Fatal(err)
	}

	matches, err := s.Match(ctx, "user-b", []float32{1, 0}, 0, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("user-b must not see user-a's documents, got %d", len(matches))
	}

	n, err := s.Count(ctx, "user-a")
	if err != nil || n != 1 {
		t.Errorf("Count(user-a) = %d, %v", n, err)
	}
}

func TestMatch_Deterministic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.Insert(ctx, "user-a", embedded(t, "same", []float32{1, 1})); err != nil {
			t.Fatal(err)
		}
	}

	first, err := s.Match(ctx, "user-a", []float32{1, 1}, 0.5, 10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Match(ctx, "user-a", []float32{1, 1}, 0.5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID() != second[i].ID() {
			t.Errorf("order differs at %d: %s vs %s", i, first[i].ID(), second[i].ID())
		}
	}
}

func TestInsert_Validation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, "", embedded(t, "t", []float32{1})); err == nil {
		t.Error("expected error for empty owner")
	}
	bare, _ := domdoc.New("t", "0123456789")
	if _, err := s.Insert(ctx, "user-a", bare); err == nil {
		t.Error("expected error for missing embedding")
	}
	if _, err := s.Match(ctx, "", []float32{1}, 0, 1); err == nil {
		t.Error("expected error for unscoped match")
	}
}

func TestPing(t *testing.T) {
	if err := openTestStore(t).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestMatch_ExactThresholdHighDimensional(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := rand.New(rand.NewPCG(7, 11))

	for trial := range 50 {
		owner := fmt.Sprintf("user-%d", trial)
		vec := make([]float32, 1536)
		for i := range vec {
			vec[i] = float32(r.NormFloat64() * 0.03)
		}
		near := append([]float32(nil), vec...)
		near[0] += 0.03

		id, err := s.Insert(ctx, owner, embedded(t, "exact", vec))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Insert(ctx, owner, embedded(t, "near", near)); err != nil {
			t.Fatal(err)
		}

		matches, err := s.Match(ctx, owner, vec, 1.0, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 1 || matches[0].ID() != id {
			t.Fatalf("trial %d: threshold 1.0 should return only the identical vector, got %d matches", trial, len(matches))
		}
		if matches[0].Similarity() != 1 {
			t.Errorf("trial %d: similarity = %.17f, want 1", trial, matches[0].Similarity())
		}
	}
}
