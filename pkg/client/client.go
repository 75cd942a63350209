package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Paths served by semdocs.
const (
	ingestPath = "/functions/v1/generate-embedding"
	searchPath = "/functions/v1/semantic-search"
)

const maxErrorBody = 4 << 10

// Client calls a semdocs server.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := &clientConfig{timeout: DefaultTimeout, userAgent: "semdocs-go"}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.token,
		userAgent:  cfg.userAgent,
		httpClient: hc,
	}
}

// Ingest stores a document for the token's subject.
func (c *Client) Ingest(ctx context.Context, title, content string) (IngestResponse, error) {
	var env ingestEnvelope
	status, err := c.post(ctx, ingestPath, map[string]string{"title": title, "content": content}, &env)
	if err != nil {
		return IngestResponse{}, err
	}
	if status != http.StatusCreated || !env.Success {
		return IngestResponse{}, &APIError{
			Status: status, Code: env.Code, Message: env.Error, ExecutionTime: env.Metadata.ExecutionTime,
		}
	}

	return IngestResponse{
		DocumentID:          env.DocumentID,
		Message:             env.Message,
		TokensUsed:          env.Metadata.TokensUsed,
		EmbeddingDimensions: env.Metadata.EmbeddingDimensions,
	}, nil
}

// Search runs a semantic query over the token subject's documents.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	var env searchEnvelope
	status, err := c.post(ctx, searchPath, req, &env)
	if err != nil {
		return SearchResponse{}, err
	}
	if status != http.StatusOK || !env.Success {
		return SearchResponse{}, &APIError{
			Status: status, Code: env.Code, Message: env.Error, ExecutionTime: env.Metadata.ExecutionTime,
		}
	}

	return SearchResponse{
		Results:        env.Results,
		QueryTokens:    env.Metadata.QueryTokens,
		ResultCount:    env.Metadata.ResultCount,
		ExecutionTime:  env.Metadata.ExecutionTime,
		MatchThreshold: env.Metadata.MatchThreshold,
		MatchCount:     env.Metadata.MatchCount,
	}, nil
}

// post sends body as JSON and decodes the envelope into out. A non-JSON reply is an *APIError.
func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("semdocs: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("semdocs: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("semdocs: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("semdocs: read response: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return resp.StatusCode, &APIError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(raw)),
		}
	}
	return resp.StatusCode, nil
}
