// Package ratelimiter throttles outgoing remote requests with a token bucket.
//
// The remote backend calls Wait before every HEAD or GET it issues. A nil
// *RateLimiter is valid and never throttles, so callers do not need to
// special-case "no limit configured".
package ratelimiter

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimiter wraps golang.org/x/time/rate.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond sustained requests with
// bursts of up to burst requests. requestsPerSecond == 0 means unlimited.
// A zero burst with a non-zero rate is raised to 1, otherwise no request
// could ever be admitted.
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst == 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Wait blocks until a request may be issued or ctx ends.
//
// When the required wait would outlast ctx's deadline, x/time/rate fails
// early; that case is reported as context.DeadlineExceeded so callers see a
// cancellation rather than a limiter error.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return ctx.Err()
	}
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, ok := ctx.Deadline(); ok {
			return context.DeadlineExceeded
		}
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// Allow reports whether a request may be issued now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}

// SetLimit changes the sustained rate. 0 means unlimited.
func (r *RateLimiter) SetLimit(requestsPerSecond uint) {
	if requestsPerSecond == 0 {
		r.limiter.SetLimit(rate.Inf)
		return
	}
	if r.limiter.Burst() == 0 {
		r.limiter.SetBurst(1)
	}
	r.limiter.SetLimit(rate.Limit(requestsPerSecond))
}

// Tokens returns the number of tokens currently available. Useful for
// debugging only: the value may change immediately.
func (r *RateLimiter) Tokens() float64 {
	if r == nil {
		return 0
	}
	return r.limiter.Tokens()
}

// Unlimited reports whether the limiter never throttles.
func (r *RateLimiter) Unlimited() bool {
	return r == nil || r.limiter.Limit() == rate.Inf
}
