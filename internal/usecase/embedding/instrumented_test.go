package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/semdocs/internal/domain"
	"github.com/kailas-cloud/semdocs/internal/logger"
)

// --- Mocks ---

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

type healthyEmbedder struct {
	mockEmbedder
	healthErr error
}

func (h *healthyEmbedder) HealthCheck(context.Context) error { return h.healthErr }

func observedContext(level zapcore.Level) (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logger.ContextWithLogger(context.Background(), zap.New(core)), logs
}

// --- Tests ---

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 7,
		TotalTokens:  7,
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model")
	ctx, logs := observedContext(zapcore.DebugLevel)

	result, err := p.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 7 {
		t.Fatalf("result = %+v", result)
	}

	entries := logs.FilterMessage("Embedding request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 completion log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["dimensions"] != int64(3) || fields["total_tokens"] != int64(7) {
		t.Errorf("log fields = %v", fields)
	}
}

func TestInstrumentedEmbedder_ErrorPassesThrough(t *testing.T) {
	inner := &mockEmbedder{err: domain.Upstreamf("Embedding API error: 500")}
	p := NewInstrumentedEmbedder(inner, "test", "test-model")
	ctx, logs := observedContext(zapcore.InfoLevel)

	_, err := p.Embed(ctx, "hello")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if got := domain.MessageOf(err, ""); got != "Embedding API error: 500" {
		t.Errorf("client message = %q", got)
	}
	if inner.calls != 1 {
		t.Errorf("expected exactly 1 call (no retries), got %d", inner.calls)
	}
	if logs.FilterMessage("Embedding request failed").Len() != 1 {
		t.Error("expected failure to be logged")
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	plain := NewInstrumentedEmbedder(&mockEmbedder{}, "test", "m")
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check should report healthy, got %v", err)
	}

	down := errors.New("down")
	checked := NewInstrumentedEmbedder(&healthyEmbedder{healthErr: down}, "test", "m")
	if err := checked.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected inner health error, got %v", err)
	}
}
