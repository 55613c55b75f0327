package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/gendataset/internal/ratelimit"
)

// ThrottleProvider is a decorator that paces calls to one endpoint
type ThrottleProvider struct {
	inner    Provider
	limiter  *ratelimit.Limiter
	endpoint string
}

// WithThrottle wraps a Provider so every call first waits on the limiter
// bucket for endpoint.
func WithThrottle(p Provider, limiter *ratelimit.Limiter, endpoint string) Provider {
	if endpoint == "" {
		endpoint = p.Name()
	}
	return &ThrottleProvider{inner: p, limiter: limiter, endpoint: endpoint}
}

// Name returns the wrapped provider's name
func (t *ThrottleProvider) Name() string {
	return t.inner.Name()
}

func (t *ThrottleProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := t.limiter.Wait(ctx, t.endpoint); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.inner.Complete(ctx, req)
}
