package workerpool

import (
	"context"
	"sync"

	"github.com/marmos91/afile/pkg/priority"
)

type outcome[T any] struct {
	value T
	err   error
}

// call is the hand-off point between a caller waiting in Do and the worker
// running its function. Exactly one of two things happens to a completed
// result: it is delivered to the caller, or the caller has already gone and
// the result is discarded.
type call[T any] struct {
	mu        sync.Mutex
	abandoned bool
	done      chan outcome[T]
}

// Do runs fn on the pool and waits for its result.
//
// The value fn produces is owned by fn until Do returns it; nothing the
// caller holds is shared with the worker. If ctx ends first, Do returns
// ctx.Err() immediately and the job is either skipped (not started yet) or
// left to finish in the background. In the latter case a successful value is
// passed to discard, if non-nil, so resources such as open descriptors are
// not leaked.
//
// A result that is already available when ctx ends is returned rather than
// discarded.
func Do[T any](ctx context.Context, p *Pool, prio priority.Priority, fn func() (T, error), discard func(T)) (T, error) {
	var zero T

	c := &call[T]{done: make(chan outcome[T], 1)}
	err := p.Submit(ctx, prio, func() {
		v, err := fn()

		c.mu.Lock()
		abandoned := c.abandoned
		if !abandoned {
			c.done <- outcome[T]{value: v, err: err}
		}
		c.mu.Unlock()

		if abandoned && err == nil && discard != nil {
			discard(v)
		}
	})
	if err != nil {
		return zero, err
	}

	select {
	case o := <-c.done:
		return o.value, o.err
	case <-ctx.Done():
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case o := <-c.done:
		return o.value, o.err
	default:
	}
	c.abandoned = true
	return zero, ctx.Err()
}
