package client

import "time"

// IngestResponse is the success envelope of an ingestion.
type IngestResponse struct {
	DocumentID          string `json:"documentId"`
	Message             string `json:"message"`
	TokensUsed          int    `json:"tokensUsed"`
	EmbeddingDimensions int    `json:"embeddingDimensions"`
}

// SearchRequest is a semantic query. Nil pointers take the server defaults.
type SearchRequest struct {
	Query          string   `json:"query"`
	MatchThreshold *float64 `json:"matchThreshold,omitempty"`
	MatchCount     *int     `json:"matchCount,omitempty"`
}

// Result is one ranked match.
type Result struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at"`
}

// SearchResponse is the success envelope of a query.
type SearchResponse struct {
	Results        []Result `json:"results"`
	QueryTokens    int      `json:"queryTokens"`
	ResultCount    int      `json:"resultCount"`
	ExecutionTime  string   `json:"executionTime"`
	MatchThreshold float64  `json:"matchThreshold"`
	MatchCount     int      `json:"matchCount"`
}

// Float returns a pointer to v, for SearchRequest.MatchThreshold.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for SearchRequest.MatchCount.
func Int(v int) *int { return &v }

type ingestEnvelope struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	Code       string `json:"code"`
	Metadata   struct {
		TokensUsed          int    `json:"tokensUsed"`
		EmbeddingDimensions int    `json:"embeddingDimensions"`
		ExecutionTime       string `json:"executionTime"`
	} `json:"metadata"`
}

type searchEnvelope struct {
	Success  bool     `json:"success"`
	Results  []Result `json:"results"`
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	Metadata struct {
		QueryTokens    int     `json:"queryTokens"`
		ResultCount    int     `json:"resultCount"`
		ExecutionTime  string  `json:"executionTime"`
		MatchThreshold float64 `json:"matchThreshold"`
		MatchCount     int     `json:"matchCount"`
	} `json:"metadata"`
}
