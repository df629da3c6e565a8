package deepcall

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	a, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.shutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s default timeout, got %v", a.shutdownTimeout)
	}
	if a.Components() == nil {
		t.Fatal("expected an owned registry")
	}
	if a.runner.components != a.Components() {
		t.Error("expected runner to publish into the owned registry")
	}
}

func TestNew_OptionError(t *testing.T) {
	t.Parallel()
	if _, err := New(WithName("")); err == nil {
		t.Fatal("expected error for empty name option")
	}
}

func TestNew_SharedRegistry(t *testing.T) {
	t.Parallel()
	shared := NewRegistry()
	a := newTestApp(WithRegistry(shared))
	if a.Components() != shared {
		t.Error("expected the shared registry to be used")
	}
}

func TestApplication_Health(t *testing.T) {
	t.Parallel()
	healthy := func(ctx context.Context) error { return nil }
	sick := func(ctx context.Context) error { return errTest }

	cases := []struct {
		name    string
		modules []Module
		wantErr bool
	}{
		{"no modules", nil, false},
		{"healthy", []Module{&mockHealthModule{mockModule{name: "h"}, healthy}}, false},
		{"unhealthy", []Module{&mockHealthModule{mockModule{name: "s"}, sick}}, true},
		{"plain modules are skipped", []Module{&mockModule{name: "p"}, &mockHealthModule{mockModule{name: "h"}, healthy}}, false},
		{"errors joined", []Module{&mockHealthModule{mockModule{name: "s1"}, sick}, &mockHealthModule{mockModule{name: "s2"}, sick}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := newTestApp()
			for _, m := range tc.modules {
				_ = a.Register(m)
			}
			err := a.Health(context.Background())
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestApplication_Uptime(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	if d := a.Uptime(); d != 0 {
		t.Errorf("expected zero uptime before Run, got %v", d)
	}
	a.meta.startTime = time.Now().Add(-1 * time.Second)
	if d := a.Uptime(); d < 1*time.Second {
		t.Errorf("expected >= 1s, got %v", d)
	}
}

func TestApplication_Run_AlreadyRunning(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	a.isRunning.Store(true)
	if err := a.Run(context.Background()); !errors.Is(err, ErrApplicationAlreadyRunning) {
		t.Errorf("expected ErrApplicationAlreadyRunning, got %v", err)
	}
}

func TestApplication_Run_RegistrationClosed(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = a.Run(ctx)
	if err := a.Register(&mockModule{name: "late"}); !errors.Is(err, ErrRegistrationClosed) {
		t.Errorf("expected ErrRegistrationClosed, got %v", err)
	}
}

func TestApplication_Run_InitError(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	_ = a.Register(&mockModule{name: "bad", initFn: func(ctx context.Context) error { return errTest }})
	if err := a.Run(context.Background()); !errors.Is(err, errTest) {
		t.Errorf("expected errTest, got %v", err)
	}
}

func TestApplication_Run_StartError(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	_ = a.Register(&mockModule{name: "bad", startFn: func(ctx context.Context) error { return errTest }})
	if err := a.Run(context.Background()); !errors.Is(err, errTest) {
		t.Errorf("expected errTest, got %v", err)
	}
}

func TestApplication_Run_HookErrors(t *testing.T) {
	t.Parallel()
	fail := func(ctx context.Context) error { return errTest }
	cases := []struct {
		name string
		hook Hook
	}{
		{"before start", Hook{BeforeStart: fail}},
		{"after start", Hook{AfterStart: fail}},
		{"after stop", Hook{AfterStop: fail}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := newTestApp(WithHook(tc.hook))
			_ = a.Register(&mockModule{name: "m1"})
			ctx, cancel := quickCancelCtx()
			defer cancel()
			if err := a.Run(ctx); !errors.Is(err, errTest) {
				t.Errorf("expected errTest, got %v", err)
			}
		})
	}
}

func TestApplication_Run_ContextCancel(t *testing.T) {
	t.Parallel()
	for _, timeout := range []time.Duration{0, 5 * time.Second} {
		a := newTestApp(WithGracefulTimeout(timeout))
		_ = a.Register(&mockModule{name: "m1"})
		ctx, cancel := quickCancelCtx()
		err := a.Run(ctx)
		cancel()
		if err != nil {
			t.Errorf("timeout %v: expected no error, got %v", timeout, err)
		}
		if a.isRunning.Load() {
			t.Errorf("timeout %v: expected isRunning to reset", timeout)
		}
	}
}

func TestApplication_Run_BackgroundError(t *testing.T) {
	t.Parallel()
	bg := newMockBgModule("bgmod")
	bg.startFn = func(ctx context.Context) error {
		go func() {
			time.Sleep(30 * time.Millisecond)
			bg.errCh <- errTest
		}()
		return nil
	}
	l := &mockLogger{}
	a := newTestApp(WithLogger(l))
	_ = a.Register(bg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := l.messages("error"); len(got) == 0 || got[0] != "background module failed" {
		t.Errorf("expected background failure to be logged, got %v", got)
	}
}

func TestApplication_Run_BackgroundChannelClosed(t *testing.T) {
	t.Parallel()
	bg := newMockBgModule("bgmod")
	close(bg.errCh)
	a := newTestApp()
	_ = a.Register(bg)
	ctx, cancel := quickCancelCtx()
	defer cancel()
	start := time.Now()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Error("expected Run to wait for ctx after background channels closed")
	}
}

func TestApplication_Run_ShutdownTimeout(t *testing.T) {
	t.Parallel()
	slow := &mockModule{name: "slow", stopFn: func(ctx context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	}}
	a := newTestApp(WithGracefulTimeout(10 * time.Millisecond))
	_ = a.Register(slow)
	ctx, cancel := quickCancelCtx()
	defer cancel()
	if err := a.Run(ctx); !errors.Is(err, ErrGracefulShutdownTimedOut) {
		t.Errorf("expected ErrGracefulShutdownTimedOut, got %v", err)
	}
}

func TestApplication_Run_ConcurrentRunCalls(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = a.Run(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer wg.Done()
		errs[1] = a.Run(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()
	if !errors.Is(errs[0], ErrApplicationAlreadyRunning) && !errors.Is(errs[1], ErrApplicationAlreadyRunning) {
		t.Errorf("expected one call to return ErrApplicationAlreadyRunning")
	}
}

func TestApplication_Shutdown_BeforeStopHookLogged(t *testing.T) {
	t.Parallel()
	l := &mockLogger{}
	a := newTestApp(WithLogger(l), WithHook(Hook{
		BeforeStop: func(ctx context.Context) error { return errTest },
	}))
	ctx, cancel := quickCancelCtx()
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("before stop failures are only logged, got %v", err)
	}
	found := false
	for _, msg := range l.messages("error") {
		if msg == "before stop hook failed" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'before stop hook failed' log, got %v", l.messages("error"))
	}
}

func TestApplication_Shutdown_ModuleStopError(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	_ = a.Register(&mockModule{name: "bad", stopFn: func(ctx context.Context) error { return errTest }})
	ctx, cancel := quickCancelCtx()
	defer cancel()
	if err := a.Run(ctx); !errors.Is(err, errTest) {
		t.Errorf("expected errTest, got %v", err)
	}
}

func TestApplication_Run_PublishesAndWithdrawsComponents(t *testing.T) {
	t.Parallel()
	add := Methods{"add": Func(func(a, b int) int { return a + b })}
	var during Result
	var duringErr error

	a := newTestApp(WithHook(Hook{
		AfterStart: func(ctx context.Context) error {
			during, duringErr = RegistryFromContext(ctx).Call(ctx, CallOptions{ID: "math", Method: "add", Args: []any{2, 3}})
			return nil
		},
	}))
	_ = a.Register(&mockProvider{
		mockModule: mockModule{name: "math"},
		components: []Component{{ID: "math", Methods: add}},
	})

	ctx, cancel := quickCancelCtx()
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if duringErr != nil || !during.Found() || during.Value() != 5 {
		t.Errorf("expected math.add to resolve to 5 while running, got %v, %v", during, duringErr)
	}
	if a.Components().Get("math") != nil {
		t.Error("expected component to be withdrawn after shutdown")
	}
}

func TestApplication_Run_ModulesSeeRegistryDuringInit(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	var seen *Registry
	_ = a.Register(&mockModule{name: "m", initFn: func(ctx context.Context) error {
		seen = RegistryFromContext(ctx)
		return nil
	}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = a.Run(ctx)
	if seen != a.Components() {
		t.Error("expected init ctx to carry the application registry")
	}
}

func TestApplication_Run_StartErrorWithdrawsComponents(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	_ = a.Register(&mockProvider{
		mockModule: mockModule{name: "p"},
		components: []Component{{ID: "svc", Methods: Methods{"x": Func(func() {})}}},
	})
	_ = a.Register(&mockModule{name: "bad", startFn: func(ctx context.Context) error { return errTest }})
	if err := a.Run(context.Background()); !errors.Is(err, errTest) {
		t.Fatalf("expected errTest, got %v", err)
	}
	if a.Components().Len() != 0 {
		t.Errorf("expected no components left, got %v", a.Components().IDs())
	}
}

func TestCollectBackgroundErrors(t *testing.T) {
	t.Parallel()
	a := newTestApp()
	_ = a.Register(&mockModule{name: "plain"})
	if ch := a.collectBackgroundErrors(); ch != nil {
		t.Error("expected nil channel when no bg modules")
	}

	a = newTestApp()
	bg1 := newMockBgModule("bg1")
	bg2 := newMockBgModule("bg2")
	_ = a.Register(bg1)
	_ = a.Register(bg2)
	ch := a.collectBackgroundErrors()
	bg1.errCh <- errTest
	close(bg2.errCh)
	count := 0
	for err := range ch {
		if !errors.Is(err, errTest) {
			t.Errorf("expected errTest, got %v", err)
		}
		count++
	}
	if count != 1 {
		t.Errorf("expected 1 error, got %d", count)
	}
}
