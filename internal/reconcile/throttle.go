package reconcile

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle is the pacing gate the loop waits on between network operations.
// Substituting Unlimited makes runs deterministic in tests.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Unlimited returns a throttle that never waits.
func Unlimited() Throttle {
	return unlimited{}
}

type unlimited struct{}

func (unlimited) Wait(context.Context) error { return nil }

// IntervalThrottle spaces operations a fixed interval apart using a token
// bucket with burst 1: the first operation proceeds immediately, each
// subsequent one waits out the remainder of the interval.
type IntervalThrottle struct {
	limiter *rate.Limiter
}

// NewInterval returns a throttle that allows one operation per interval.
func NewInterval(interval time.Duration) *IntervalThrottle {
	return &IntervalThrottle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next operation is permitted or the context is done.
func (t *IntervalThrottle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// SetInterval adjusts the pacing interval. Safe to call while a run is in
// flight; config hot-reload uses this to retune long-running syncs.
func (t *IntervalThrottle) SetInterval(interval time.Duration) {
	t.limiter.SetLimit(rate.Every(interval))
}
