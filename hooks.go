package deepcall

import "context"

// Hook callbacks run around module start and stop. Each field is optional.
type Hook struct {
	BeforeStart func(ctx context.Context) error
	AfterStart  func(ctx context.Context) error
	BeforeStop  func(ctx context.Context) error
	AfterStop   func(ctx context.Context) error
}

type hookStage func(Hook) func(ctx context.Context) error

func runHooks(ctx context.Context, hooks []Hook, stage hookStage) error {
	for _, h := range hooks {
		if fn := stage(h); fn != nil {
			if err := fn(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func beforeStart(h Hook) func(ctx context.Context) error { return h.BeforeStart }
func afterStart(h Hook) func(ctx context.Context) error  { return h.AfterStart }
func beforeStop(h Hook) func(ctx context.Context) error  { return h.BeforeStop }
func afterStop(h Hook) func(ctx context.Context) error   { return h.AfterStop }
