package weather

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited puts a token bucket in front of a Provider. Both endpoints
// share one bucket since they hit the same upstream quota.
type RateLimited struct {
	provider Provider
	limiter  *rate.Limiter
	name     string
}

// Ensure RateLimited implements Provider
var _ Provider = (*RateLimited)(nil)

// NewRateLimited allows rps requests per second (fractional for slower
// rates) with bursts of up to burst requests.
func NewRateLimited(provider Provider, rps float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     fmt.Sprintf("%s [rate limited]", provider.Name()),
	}
}

func (r *RateLimited) Name() string {
	return r.name
}

func (r *RateLimited) Current(ctx context.Context, location string) (*Snapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.Current(ctx, location)
}

func (r *RateLimited) Forecast(ctx context.Context, location string) ([]ForecastEntry, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.Forecast(ctx, location)
}
