// Package embedtest provides deterministic embedders for tests.
package embedtest

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/kailas-cloud/semdocs/internal/domain"
)

// Embedder hashes lowercase words into a fixed number of buckets.
// Texts sharing words get positive cosine similarity; identical word multisets get 1.
type Embedder struct {
	Dimensions int
	// Err, when set, is returned by every call.
	Err error

	mu    sync.Mutex
	calls int
	texts []string
}

// New returns a stub embedder producing vectors of the given length.
func New(dimensions int) *Embedder {
	return &Embedder{Dimensions: dimensions}
}

// Embed implements domain.Embedder. TotalTokens equals the word count.
func (e *Embedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.mu.Lock()
	e.calls++
	e.texts = append(e.texts, text)
	e.mu.Unlock()

	if e.Err != nil {
		return domain.EmbeddingResult{}, e.Err
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	vec := make([]float32, e.Dimensions)
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%uint32(e.Dimensions)]++
	}

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: len(words),
		TotalTokens:  len(words),
	}, nil
}

// Calls returns how many times Embed was invoked.
func (e *Embedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Texts returns every text passed to Embed, in call order.
func (e *Embedder) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.texts...)
}
