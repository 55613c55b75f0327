package llm

import (
	"context"

	"github.com/ppiankov/gendataset/internal/cache"
)

// CachedProvider is a decorator that answers repeated identical requests
// from a reply cache
type CachedProvider struct {
	inner Provider
	cache cache.Cache
	model string
}

// WithCache wraps a Provider with a reply cache. model is part of the key so
// a cache shared between providers never mixes their replies.
func WithCache(p Provider, c cache.Cache, model string) Provider {
	return &CachedProvider{inner: p, cache: c, model: model}
}

// Name returns the wrapped provider's name
func (c *CachedProvider) Name() string {
	return c.inner.Name()
}

func (c *CachedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	key := cache.Key(c.inner.Name(), c.model, req.System, req.Input)
	if entry, ok := c.cache.Get(key); ok {
		return &CompletionResponse{Text: entry.Text, Model: entry.Model}, nil
	}

	resp, err := c.inner.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, cache.Entry{Text: resp.Text, Model: resp.Model})
	return resp, nil
}

// Stats reports the cache's hits and misses
func (c *CachedProvider) Stats() (hits, misses int64) {
	return c.cache.Stats()
}
