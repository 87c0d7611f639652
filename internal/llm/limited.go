package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limited throttles calls to an underlying provider.
type Limited struct {
	next    Provider
	limiter *rate.Limiter
}

// NewLimiter returns a limiter allowing requestsPerSecond calls with the given
// burst, or nil when requestsPerSecond is not positive.
func NewLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// NewLimited wraps p so that at most requestsPerSecond calls start per second.
func NewLimited(p Provider, requestsPerSecond float64, burst int) *Limited {
	if burst <= 0 {
		burst = 5
	}
	return &Limited{
		next:    p,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// NewSharedLimited wraps p with an existing limiter.
func NewSharedLimited(p Provider, limiter *rate.Limiter) *Limited {
	return &Limited{next: p, limiter: limiter}
}

// Name returns the wrapped provider's name.
func (l *Limited) Name() string {
	return l.next.Name()
}

// Generate waits for a token, then delegates.
func (l *Limited) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return l.next.Generate(ctx, req)
}

// IsAvailable delegates without consuming a token.
func (l *Limited) IsAvailable(ctx context.Context) bool {
	return l.next.IsAvailable(ctx)
}
