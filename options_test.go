package deepcall

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestOptions_Meta(t *testing.T) {
	t.Parallel()
	a, err := New(WithName("myapp"), WithVersion("2.0"), WithEnvironment("prod"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.meta.name != "myapp" || a.meta.version != "2.0" || a.meta.environment != "prod" {
		t.Errorf("unexpected meta: %+v", a.meta)
	}
}

func TestOptions_Errors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		opt  Option
		want error
	}{
		{"empty name", WithName(""), ErrAppNameEmpty},
		{"negative timeout", WithGracefulTimeout(-1 * time.Second), ErrShutdownTimeoutNonPositive},
		{"nil registry", WithRegistry(nil), ErrRegistryNil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tc.opt); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestWithGracefulTimeout_Valid(t *testing.T) {
	t.Parallel()
	for _, timeout := range []time.Duration{0, 5 * time.Second} {
		a, err := New(WithGracefulTimeout(timeout))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.shutdownTimeout != timeout {
			t.Errorf("expected %v, got %v", timeout, a.shutdownTimeout)
		}
	}
}

func TestWithLogger(t *testing.T) {
	t.Parallel()
	l := &mockLogger{}
	a, err := New(WithLogger(l))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.logger != l {
		t.Errorf("expected custom logger to be set")
	}
	if a.Components().logger != l {
		t.Errorf("expected owned registry to share the application logger")
	}

	a, err = New(WithLogger(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.logger.(*noopLogger); !ok {
		t.Errorf("expected noopLogger when nil passed, got %T", a.logger)
	}
}

func TestWithHook(t *testing.T) {
	t.Parallel()
	h := Hook{BeforeStart: func(ctx context.Context) error { return nil }}
	a, err := New(WithHook(h), WithHook(h))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.hooks) != 2 {
		t.Errorf("expected 2 hooks, got %d", len(a.hooks))
	}
}
