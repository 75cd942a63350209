package match

import (
	"sort"
	"time"
)

// Match is a single ranked search hit.
type Match struct {
	id         string
	title      string
	content    string
	similarity float64
	createdAt  time.Time
}

// New creates a match.
func New(id, title, content string, similarity float64, createdAt time.Time) Match {
	return Match{id: id, title: title, content: content, similarity: similarity, createdAt: createdAt}
}

// ID returns the document identifier.
func (m *Match) ID() string { return m.id }

// Title returns the document title.
func (m *Match) Title() string { return m.title }

// Content returns the document body.
func (m *Match) Content() string { return m.content }

// Similarity returns the cosine similarity in [0,1]; 1 means identical direction.
func (m *Match) Similarity() float64 { return m.similarity }

// CreatedAt returns the document creation time.
func (m *Match) CreatedAt() time.Time { return m.createdAt }

// Rank keeps matches at or above threshold, orders them by descending similarity
// (ties by id) and truncates to limit. The input slice is reused.
func Rank(matches []Match, threshold float64, limit int) []Match {
	kept := matches[:0]
	for _, m := range matches {
		if m.similarity >= threshold {
			kept = append(kept, m)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].similarity != kept[j].similarity {
			return kept[i].similarity > kept[j].similarity
		}
		return kept[i].id < kept[j].id
	})

	if limit >= 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
