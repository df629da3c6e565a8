// Package schedule calls component methods on cron schedules.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/shuldan/deepcall"
	"github.com/shuldan/deepcall/internal/config"
)

var ErrNoRegistry = errors.New("schedule: no component registry in context")

// Module is a deepcall.Module that fires configured calls through the
// registry carried by the run context.
type Module struct {
	entries  []config.ScheduleConfig
	logger   deepcall.Logger
	opts     []cron.Option
	cron     *cron.Cron
	registry *deepcall.Registry
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(entries []config.ScheduleConfig, logger deepcall.Logger, opts ...cron.Option) *Module {
	return &Module{entries: entries, logger: logger, opts: opts}
}

func (m *Module) Name() string { return "scheduler" }

func (m *Module) Init(ctx context.Context) error {
	m.registry = deepcall.RegistryFromContext(ctx)
	if m.registry == nil {
		return ErrNoRegistry
	}

	m.cron = cron.New(m.opts...)
	for _, entry := range m.entries {
		if _, err := m.cron.AddFunc(entry.Spec, func() { m.fire(entry) }); err != nil {
			return fmt.Errorf("schedule %q: %w", entryName(entry), err)
		}
		m.logger.Info("scheduled component call", "schedule", entryName(entry), "spec", entry.Spec)
	}
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
	m.cron.Start()
	return nil
}

// Stop cancels in-flight calls and waits for running jobs to return.
func (m *Module) Stop(ctx context.Context) error {
	if m.cron == nil {
		return nil
	}
	if m.cancel != nil {
		m.cancel()
	}
	select {
	case <-m.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Module) fire(entry config.ScheduleConfig) {
	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := m.Fire(ctx, entry)
	switch {
	case err != nil:
		m.logger.Error("scheduled call failed", "schedule", entryName(entry), "error", err)
	case res.Found():
		m.logger.Info("scheduled call completed", "schedule", entryName(entry), "result", res.Value())
	}
}

// Fire performs one scheduled call immediately.
func (m *Module) Fire(ctx context.Context, entry config.ScheduleConfig) (deepcall.Result, error) {
	return m.registry.Call(ctx, deepcall.CallOptions{
		ID:     entry.ID,
		Method: entry.Method,
		Args:   entry.Args,
	})
}

func entryName(entry config.ScheduleConfig) string {
	if entry.Name != "" {
		return entry.Name
	}
	return entry.ID + "." + entry.Method
}
