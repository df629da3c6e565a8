package deepcall

import (
	"context"
	"errors"
	"sync"
	"time"
)

type mockModule struct {
	name    string
	initFn  func(ctx context.Context) error
	startFn func(ctx context.Context) error
	stopFn  func(ctx context.Context) error
}

func (m *mockModule) Name() string { return m.name }
func (m *mockModule) Init(ctx context.Context) error {
	if m.initFn != nil {
		return m.initFn(ctx)
	}
	return nil
}
func (m *mockModule) Start(ctx context.Context) error {
	if m.startFn != nil {
		return m.startFn(ctx)
	}
	return nil
}
func (m *mockModule) Stop(ctx context.Context) error {
	if m.stopFn != nil {
		return m.stopFn(ctx)
	}
	return nil
}

type mockBgModule struct {
	mockModule
	errCh chan error
}

func newMockBgModule(name string) *mockBgModule {
	return &mockBgModule{
		mockModule: mockModule{name: name},
		errCh:      make(chan error, 1),
	}
}

func (m *mockBgModule) Err() <-chan error { return m.errCh }

type mockHealthModule struct {
	mockModule
	healthFn func(ctx context.Context) error
}

func (m *mockHealthModule) Health(ctx context.Context) error {
	if m.healthFn != nil {
		return m.healthFn(ctx)
	}
	return nil
}

type mockProvider struct {
	mockModule
	components []Component
}

func (m *mockProvider) Components() []Component { return m.components }

var (
	_ Module            = (*mockModule)(nil)
	_ BackgroundModule  = (*mockBgModule)(nil)
	_ HealthChecker     = (*mockHealthModule)(nil)
	_ ComponentProvider = (*mockProvider)(nil)
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *mockLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *mockLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *mockLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *mockLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *mockLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *mockLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e.msg)
		}
	}
	return out
}

// warned reports whether a warning carrying target as its "error" attribute
// was logged.
func (l *mockLogger) warned(target error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level != "warn" {
			continue
		}
		for i := 0; i+1 < len(e.args); i += 2 {
			if e.args[i] != "error" {
				continue
			}
			if err, ok := e.args[i+1].(error); ok && errors.Is(err, target) {
				return true
			}
		}
	}
	return false
}

func quickCancelCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 50*time.Millisecond)
}

func newTestApp(opts ...Option) *Application {
	a, _ := New(opts...)
	return a
}

var errTest = errors.New("test error")
