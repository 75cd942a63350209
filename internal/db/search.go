package db

// TagFilter restricts a search to hashes whose TAG field equals Value exactly.
type TagFilter struct {
	Field string
	Value string
}

// KNNQuery is the input for vector similarity search.
// Filters are ANDed and applied before the KNN step.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Filters      []TagFilter
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is cosine similarity clamped to [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
