package explain

import (
	"context"

	"github.com/nisdos/shellsig/internal/model"
	telem "github.com/nisdos/shellsig/internal/otel"
)

// CachedExplainer wraps an Explainer with the per-session Cache, so a
// failure that repeats unchanged is answered without another LLM call.
type CachedExplainer struct {
	inner   Explainer
	cache   *Cache
	metrics *telem.Metrics
}

// NewCachedExplainer wraps inner with cache. metrics may be nil.
func NewCachedExplainer(inner Explainer, cache *Cache, metrics *telem.Metrics) *CachedExplainer {
	return &CachedExplainer{inner: inner, cache: cache, metrics: metrics}
}

// Provider returns the wrapped provider name.
func (c *CachedExplainer) Provider() string {
	return c.inner.Provider()
}

// Model returns the wrapped model name.
func (c *CachedExplainer) Model() string {
	return c.inner.Model()
}

// ExplainSession diagnoses a failure for a session, consulting the cache
// first. Cached responses carry zero token usage.
func (c *CachedExplainer) ExplainSession(ctx context.Context, session string, req Request) (*model.Explanation, error) {
	if cached, ok := c.cache.Lookup(session, req); ok {
		c.metrics.RecordCacheHit(ctx)
		return cached, nil
	}
	c.metrics.RecordCacheMiss(ctx)

	explanation, err := c.inner.Explain(ctx, req)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordTokens(ctx, c.inner.Provider(), c.inner.Model(),
		explanation.Usage.InputTokens, explanation.Usage.OutputTokens)

	c.cache.Store(session, req, *explanation)
	return explanation, nil
}
