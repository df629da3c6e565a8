package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shuldan/deepcall"
	"github.com/shuldan/deepcall/internal/builtin"
	"github.com/shuldan/deepcall/internal/config"
	"github.com/shuldan/deepcall/internal/schedule"
	"github.com/shuldan/deepcall/zaplog"
)

type cli struct {
	configPath string
	cfg        *config.Config
	logger     *zaplog.Logger
}

func (c *cli) command() *cobra.Command {
	root := &cobra.Command{
		Use:          "deepcall",
		Short:        "Publish and invoke named component methods",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv("DEEPCALL_CONFIG"), "path to a YAML config file")

	root.AddCommand(c.listCmd(), c.callCmd(), c.runCmd())
	return root
}

// execute runs root and flushes the logger afterwards, including when the
// command failed.
func (c *cli) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	return err
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.logger != nil {
		return nil
	}
	z, err := zaplog.Build(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	c.logger = zaplog.New(z)
	return nil
}

func (c *cli) newApplication(withSchedules bool, extra ...deepcall.Option) (*deepcall.Application, error) {
	opts := []deepcall.Option{
		deepcall.WithName(c.cfg.App.Name),
		deepcall.WithVersion(c.cfg.App.Version),
		deepcall.WithEnvironment(c.cfg.App.Environment),
		deepcall.WithGracefulTimeout(c.cfg.App.GracefulTimeout()),
		deepcall.WithLogger(c.logger),
	}
	app, err := deepcall.New(append(opts, extra...)...)
	if err != nil {
		return nil, err
	}
	if err := app.Register(builtin.New()); err != nil {
		return nil, err
	}
	if withSchedules && len(c.cfg.Schedules) > 0 {
		if err := app.Register(schedule.New(c.cfg.Schedules, c.logger)); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// once runs the application just long enough for fn to use its registry.
func (c *cli) once(ctx context.Context, fn func(ctx context.Context, r *deepcall.Registry) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var fnErr error
	app, err := c.newApplication(false, deepcall.WithHook(deepcall.Hook{
		AfterStart: func(ctx context.Context) error {
			defer cancel()
			fnErr = fn(ctx, deepcall.RegistryFromContext(ctx))
			return nil
		},
	}))
	if err != nil {
		return err
	}
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return fnErr
}
