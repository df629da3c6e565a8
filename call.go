package deepcall

import (
	"context"
	"fmt"
)

type CallOptions struct {
	ID     string
	Method string
	Args   []any
}

// Call invokes a component method by name.
//
// A missing component or method is not an error: it is logged and reported
// as NotFound. Errors returned by the method, or by the Awaitable it
// returns, are passed back unmodified. Panics are not recovered.
//
// The methods bag is captured at lookup, so unregistering the component
// while the call is in flight does not affect it. No timeout is applied;
// ctx is handed to the method and to Await as is.
func (r *Registry) Call(ctx context.Context, opts CallOptions) (Result, error) {
	method, ok := r.method(opts.ID, opts.Method)
	if !ok {
		r.log().Warn(
			fmt.Sprintf("component %q not found or method %q does not exist", opts.ID, opts.Method),
			"component", opts.ID,
			"method", opts.Method,
			"error", ErrMethodNotFound,
		)
		return NotFound(), nil
	}

	value, err := method(ctx, opts.Args...)
	if err != nil {
		return Result{}, err
	}
	value, err = settle(ctx, value)
	if err != nil {
		return Result{}, err
	}
	return Found(value), nil
}

func (r *Registry) method(id, name string) (Method, bool) {
	methods, ok := r.Lookup(id)
	if !ok {
		return nil, false
	}
	method := methods[name]
	return method, method != nil
}

// settle awaits v until it is no longer Awaitable.
func settle(ctx context.Context, v any) (any, error) {
	for {
		awaitable, ok := v.(Awaitable)
		if !ok {
			return v, nil
		}
		var err error
		if v, err = awaitable.Await(ctx); err != nil {
			return nil, err
		}
	}
}
