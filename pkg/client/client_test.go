package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIngest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ingestPath || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["title"] != "Go notes" || body["content"] != "channels are typed conduits" {
			t.Errorf("body = %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"documentId":"doc-1","message":"Document created successfully",` +
			`"metadata":{"tokensUsed":5,"embeddingDimensions":1536}}`))
	}))
	defer server.Close()

	c := New(server.URL+"/", WithToken("tok"))
	res, err := c.Ingest(context.Background(), "Go notes", "channels are typed conduits")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.DocumentID != "doc-1" || res.TokensUsed != 5 || res.EmbeddingDimensions != 1536 {
		t.Errorf("res = %+v", res)
	}
}

func TestIngest_FailureEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Missing authorization header","code":"authentication_error"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Ingest(context.Background(), "t", "0123456789")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != CodeAuthentication ||
		apiErr.Message != "Missing authorization header" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != searchPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != "golang" || body["matchCount"] != float64(3) {
			t.Errorf("body = %v", body)
		}
		if _, ok := body["matchThreshold"]; ok {
			t.Error("unset threshold must be omitted")
		}

		_, _ = w.Write([]byte(`{"success":true,"results":[{"id":"a","title":"T","content":"C","similarity":0.9,` +
			`"created_at":"2026-01-04T10:00:00.000Z"}],"metadata":{"queryTokens":1,"resultCount":1,` +
			`"executionTime":"12ms","matchThreshold":0.5,"matchCount":3}}`))
	}))
	defer server.Close()

	res, err := New(server.URL).Search(context.Background(), SearchRequest{Query: "golang", MatchCount: Int(3)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].ID != "a" || res.Results[0].Similarity != 0.9 {
		t.Errorf("results = %+v", res.Results)
	}
	if !res.Results[0].CreatedAt.Equal(time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at = %v", res.Results[0].CreatedAt)
	}
	if res.ExecutionTime != "12ms" || res.MatchCount != 3 || res.MatchThreshold != 0.5 {
		t.Errorf("metadata = %+v", res)
	}
}

func TestSearch_FailureCarriesExecutionTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Embedding API error: 500","code":"upstream_error",` +
			`"metadata":{"executionTime":"3ms"}}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Search(context.Background(), SearchRequest{Query: "q"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != CodeUpstream || apiErr.ExecutionTime != "3ms" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestPost_NonJSONReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	_, err := New(server.URL).Search(context.Background(), SearchRequest{Query: "q"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Message != "bad gateway" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestNew_DefaultTimeout(t *testing.T) {
	c := New("http://example.invalid")
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}

	c = New("http://example.invalid", WithTimeout(time.Second))
	if c.httpClient.Timeout != time.Second {
		t.Errorf("timeout = %v, want 1s", c.httpClient.Timeout)
	}

	hc := &http.Client{}
	c = New("http://example.invalid", WithHTTPClient(hc))
	if c.httpClient != hc {
		t.Error("WithHTTPClient not applied")
	}
}

func TestPost_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(server.URL).Ingest(ctx, "t", "0123456789")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestPost_UserAgent(t *testing.T) {
	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"documentId":"d","metadata":{}}`))
	}))
	defer server.Close()

	if _, err := New(server.URL).Ingest(context.Background(), "t", "0123456789"); err != nil {
		t.Fatal(err)
	}
	if _, err := New(server.URL, WithUserAgent("notes-sync/2.1")).Ingest(context.Background(), "t", "0123456789"); err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 || got[0] != "semdocs-go" || got[1] != "notes-sync/2.1" {
		t.Errorf("User-Agent headers = %v", got)
	}
}
