package domain

import "context"

type usageKey struct{}

// EmbeddingUsage accumulates provider usage for one HTTP request.
// The transport installs it, use cases record into it, and the transport reads it back
// for the X-Embedding-Tokens header once the response envelope is decided.
type EmbeddingUsage struct {
	Calls       int
	TotalTokens int
	Dimensions  int
}

// WithUsage returns a context carrying a fresh usage collector.
func WithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFrom extracts the usage collector. Returns nil if none was installed.
func UsageFrom(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(usageKey{}).(*EmbeddingUsage)
	return u
}

// Record adds one embedding call. Safe on a nil receiver.
func (u *EmbeddingUsage) Record(res EmbeddingResult) {
	if u == nil {
		return
	}
	u.Calls++
	u.TotalTokens += res.TotalTokens
	u.Dimensions = len(res.Embedding)
}

// Used reports whether any embedding call was made, including cache hits that cost 0 tokens.
func (u *EmbeddingUsage) Used() bool { return u != nil && u.Calls > 0 }
