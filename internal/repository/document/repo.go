// Package document persists embedded documents as HASH keys under an FT vector index.
package document

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/semdocs/internal/db"
	"github.com/kailas-cloud/semdocs/internal/domain"
	domdoc "github.com/kailas-cloud/semdocs/internal/domain/document"
	"github.com/kailas-cloud/semdocs/internal/vecbytes"
)

// Hash field names shared with the search repository.
const (
	FieldTitle     = "title"
	FieldContent   = "content"
	FieldOwner     = "owner"
	FieldCreatedAt = "created_at" // unix milliseconds
	FieldVector    = "vector"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// IndexOptions sizes the FT vector index.
type IndexOptions struct {
	Dimensions     int
	HNSWM          int
	EFConstruction int
}

// Repo implements usecase/ingest.Inserter over a key-value store.
type Repo struct {
	store store
	index IndexOptions
	newID func() string
	now   func() time.Time
}

// New creates a document repository.
func New(s store, opts IndexOptions) *Repo {
	return &Repo{
		store: s,
		index: opts,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// EnsureIndex creates the document vector index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, domain.DocumentIndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", domain.DocumentIndexName, err)
	}
	if exists {
		return nil
	}

	def, err := IndexDefinition(r.index)
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", domain.DocumentIndexName, err)
	}
	return nil
}

// IndexDefinition describes the document index: owner TAG, created_at NUMERIC, cosine HNSW vector.
func IndexDefinition(opts IndexOptions) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(domain.DocumentIndexName).
		Prefix(domain.DocumentKeyPrefix).
		Tag(FieldOwner).
		Numeric(FieldCreatedAt).
		VectorHNSW(FieldVector, opts.Dimensions, db.DistanceCosine, opts.HNSWM, opts.EFConstruction).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index definition: %w", err)
	}
	return def, nil
}

// Insert stores an embedded document under a fresh id owned by owner.
func (r *Repo) Insert(ctx context.Context, owner string, doc domdoc.Document) (string, error) {
	if owner == "" {
		return "", errors.New("owner is required")
	}
	if len(doc.Vector()) == 0 {
		return "", errors.New("document has no embedding")
	}

	stamped := doc.Stamp(r.newID(), owner, doc.Vector(), r.now())
	key := Key(stamped.ID())

	if err := r.store.HSet(ctx, key, hashFields(&stamped)); err != nil {
		return "", fmt.Errorf("hset %s: %w", key, err)
	}
	return stamped.ID(), nil
}

// Key returns the storage key for a document id.
func Key(id string) string {
	return domain.DocumentKeyPrefix + id
}

func hashFields(doc *domdoc.Document) map[string]string {
	return map[string]string{
		FieldTitle:     doc.Title(),
		FieldContent:   doc.Content(),
		FieldOwner:     doc.Owner(),
		FieldCreatedAt: strconv.FormatInt(doc.CreatedAt().UnixMilli(), 10),
		FieldVector:    rueidis.BinaryString(vecbytes.Encode(doc.Vector())),
	}
}

// ParseCreatedAt decodes the created_at hash field. Malformed values yield the zero time.
func ParseCreatedAt(v string) time.Time {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
