package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every fetcher talking to one exchange.
// With burst 1 it spaces requests at least interval apart across goroutines.
type Limiter struct {
	rl       *rate.Limiter
	interval time.Duration
}

// New creates a limiter granting one token per interval with the given burst.
func New(interval time.Duration, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Every(interval), burst), interval: interval}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}

// Allow consumes a token without blocking.
func (l *Limiter) Allow() bool {
	return l.rl.Allow()
}

// Interval returns the minimum spacing between requests.
func (l *Limiter) Interval() time.Duration { return l.interval }
