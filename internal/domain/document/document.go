package document

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/semdocs/internal/domain"
)

// Field limits, counted in characters (runes).
const (
	MaxTitleLength   = 200
	MinContentLength = 10
	MaxContentLength = 8000
)

// Document is the document aggregate. Immutable once persisted.
type Document struct {
	id        string
	owner     string
	title     string
	content   string
	vector    []float32
	createdAt time.Time
}

// New validates a (title, content) submission.
// Title: 1-200 chars. Content: at least 10 chars after trimming, at most 8000 chars.
// Violations are domain.ErrValidation; nothing else is checked here.
func New(title, content string) (Document, error) {
	if title == "" {
		return Document{}, domain.Validationf("Title is required and must be a non-empty string")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return Document{}, domain.Validationf("Title must be at most %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < MinContentLength {
		return Document{}, domain.Validationf("Content must be at least %d characters long", MinContentLength)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return Document{}, domain.Validationf("Content must be at most %d characters", MaxContentLength)
	}

	return Document{title: title, content: content}, nil
}

// ID returns the identifier assigned at persistence time.
func (d *Document) ID() string { return d.id }

// Owner returns the owning user id.
func (d *Document) Owner() string { return d.owner }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Content returns the document body.
func (d *Document) Content() string { return d.content }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// CreatedAt returns the creation timestamp (UTC).
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// WithEmbedding returns a copy carrying the content embedding.
func (d *Document) WithEmbedding(vector []float32) Document {
	c := *d
	c.vector = vector
	return c
}

// Stamp returns a copy bound to its embedding, owner and identity, ready to persist.
func (d *Document) Stamp(id, owner string, vector []float32, createdAt time.Time) Document {
	return Document{
		id: id, owner: owner, title: d.title, content: d.content,
		vector: vector, createdAt: createdAt.UTC(),
	}
}
