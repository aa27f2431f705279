package linkedin

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum delay between outbound requests. A single Pacer
// is intended to be shared by every provider instance talking to the same
// host, so concurrent runs still space their requests out.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer allowing one request per minDelay. A
// non-positive delay disables pacing.
func NewPacer(minDelay time.Duration) *Pacer {
	if minDelay <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(minDelay), 1)}
}

// Wait blocks until the next request is allowed or the context is done.
// A nil or disabled pacer never blocks.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
