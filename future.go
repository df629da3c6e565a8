package deepcall

import (
	"context"
	"fmt"
)

// Awaitable is a deferred method result. Call awaits any returned value
// implementing it before handing the result back.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// Future is a value settled once by a background goroutine.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

// Async runs fn on a new goroutine and returns a Future for its outcome. A
// panic in fn settles the Future with an error wrapping ErrAsyncPanic.
func Async(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if p := recover(); p != nil {
				f.value, f.err = nil, fmt.Errorf("%w: %v", ErrAsyncPanic, p)
			}
		}()
		f.value, f.err = fn(ctx)
	}()
	return f
}

func Resolved(value any) *Future {
	f := &Future{done: make(chan struct{}), value: value}
	close(f.done)
	return f
}

func Rejected(err error) *Future {
	f := &Future{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Done is closed once the Future is settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx is done. A settled Future
// always wins over a cancelled ctx.
func (f *Future) Await(ctx context.Context) (any, error) {
	if f == nil {
		return nil, nil
	}
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
