package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider caps calls to a shared Provider at a requests-per-minute
// budget. All auto-answer workers funnel questions through one provider, so a
// busy morning drains at the API's pace instead of tripping its quota.
type RateLimitedProvider struct {
	provider Provider
	rpm      int

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewRateLimitedProvider allows at most rpm requests per minute, with an
// initial burst allowance of the same size.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		rpm = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		rpm:      rpm,
		tokens:   float64(rpm),
		last:     time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if wait := r.take(); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return r.provider.Complete(ctx, req)
}

// take refills the bucket from elapsed time, claims one token and returns how
// long the caller must sleep before sending. Tokens may go negative: each
// waiting caller holds a claim on a future refill, so concurrent calls line
// up instead of racing for the same token.
func (r *RateLimitedProvider) take() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.tokens += now.Sub(r.last).Minutes() * float64(r.rpm)
	if limit := float64(r.rpm); r.tokens > limit {
		r.tokens = limit
	}
	r.last = now

	r.tokens--
	if r.tokens >= 0 {
		return 0
	}
	perToken := time.Minute / time.Duration(r.rpm)
	return time.Duration(-r.tokens * float64(perToken))
}
