package query

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/semdocs/internal/domain"
)

// Query limits and defaults.
const (
	MaxTextLength    = 500
	DefaultThreshold = 0.5
	DefaultCount     = 10
	MinCount         = 1
	MaxCount         = 50
)

// Query is an ephemeral semantic search request. Never persisted.
type Query struct {
	text      string
	threshold float64
	count     int
}

// New validates a search request. nil threshold/count take their defaults.
// count arrives as a JSON number and must be integral.
func New(text string, threshold, count *float64) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, domain.Validationf("Query is required and must be a non-empty string")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return Query{}, domain.Validationf("Query must be at most %d characters", MaxTextLength)
	}

	q := Query{text: text, threshold: DefaultThreshold, count: DefaultCount}

	if threshold != nil {
		t := *threshold
		if math.IsNaN(t) || t < 0 || t > 1 {
			return Query{}, domain.Validationf("Match threshold must be between 0 and 1")
		}
		q.threshold = t
	}

	if count != nil {
		c := *count
		if math.IsNaN(c) || c != math.Trunc(c) {
			return Query{}, domain.Validationf("Match count must be an integer")
		}
		if c < MinCount || c > MaxCount {
			return Query{}, domain.Validationf("Match count must be between %d and %d", MinCount, MaxCount)
		}
		q.count = int(c)
	}

	return q, nil
}

// Text returns the query text as submitted.
func (q *Query) Text() string { return q.text }

// Threshold returns the minimum similarity a match must reach.
func (q *Query) Threshold() float64 { return q.threshold }

// Count returns the maximum number of matches.
func (q *Query) Count() int { return q.count }
