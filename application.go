package deepcall

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Application drives a set of modules through init, start and stop, and owns
// the component registry they publish into and call through.
type Application struct {
	meta            meta
	modules         *moduleSet
	components      *Registry
	runner          *runner
	logger          Logger
	hooks           []Hook
	isRunning       atomic.Bool
	shutdownTimeout time.Duration
}

func New(opts ...Option) (*Application, error) {
	a := &Application{
		modules:         newModuleSet(),
		logger:          &noopLogger{},
		shutdownTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if a.components == nil {
		a.components = NewRegistry(WithRegistryLogger(a.logger))
	}

	a.runner = &runner{
		modules:    a.modules,
		components: a.components,
		logger:     a.logger,
	}

	return a, nil
}

func (a *Application) Register(module Module) error {
	return a.modules.add(module)
}

// Components returns the registry owned by the application.
func (a *Application) Components() *Registry {
	return a.components
}

func (a *Application) Health(ctx context.Context) error {
	var errs []error
	for _, hc := range a.modules.healthCheckers() {
		if err := hc.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("module %q: %w", hc.name, err))
		}
	}
	return errors.Join(errs...)
}

func (a *Application) Uptime() time.Duration {
	return a.meta.uptime()
}

// Run blocks until ctx is cancelled, SIGINT or SIGTERM arrives, or a
// background module reports an error, then shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	if !a.isRunning.CompareAndSwap(false, true) {
		return ErrApplicationAlreadyRunning
	}
	defer a.isRunning.Store(false)

	a.modules.seal()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.meta.startTime = time.Now()
	a.meta.stopTime = time.Time{}
	ctx = a.meta.enrichContext(ctx)
	ctx = ContextWithRegistry(ctx, a.components)

	go a.setupSignalHandler(ctx, cancel)

	a.logger.Info("initializing modules")
	if err := a.runner.initAll(ctx); err != nil {
		return err
	}

	a.runner.publishAll()

	if err := runHooks(ctx, a.hooks, beforeStart); err != nil {
		a.runner.withdrawAll()
		return fmt.Errorf("before start hook: %w", err)
	}

	a.logger.Info("starting modules")
	startedModules, err := a.runner.startAll(ctx)
	if err != nil {
		a.runner.withdrawAll()
		return err
	}

	if err := runHooks(ctx, a.hooks, afterStart); err != nil {
		a.logger.Error("after start hook failed, shutting down", "error", err)
		shutdownErr := a.runner.shutdownModules(context.Background(), startedModules)
		a.runner.withdrawAll()
		return errors.Join(fmt.Errorf("after start hook: %w", err), shutdownErr)
	}

	bgErrCh := a.collectBackgroundErrors()

	a.logger.Info("application started", "components", a.components.Len())

wait:
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("shutdown signal received")
			break wait
		case bgErr, ok := <-bgErrCh:
			if !ok {
				bgErrCh = nil
				continue
			}
			a.logger.Error("background module failed", "error", bgErr)
			cancel()
			break wait
		}
	}

	return a.shutdown(ctx)
}

func (a *Application) shutdown(runCtx context.Context) error {
	defer func() {
		a.meta.stopTime = time.Now()
	}()

	hookCtx := context.WithoutCancel(runCtx)
	if err := runHooks(hookCtx, a.hooks, beforeStop); err != nil {
		a.logger.Error("before stop hook failed", "error", err)
	}

	var shutdownErr error
	if a.shutdownTimeout > 0 {
		shutdownCtx, timeoutCancel := context.WithTimeout(hookCtx, a.shutdownTimeout)
		defer timeoutCancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- a.runner.shutdownAll(shutdownCtx)
		}()

		select {
		case shutdownErr = <-errCh:
		case <-shutdownCtx.Done():
			shutdownErr = ErrGracefulShutdownTimedOut
		}
	} else {
		shutdownErr = a.runner.shutdownAll(hookCtx)
	}

	a.runner.withdrawAll()

	if shutdownErr != nil {
		a.logger.Error("shutdown completed with errors", "error", shutdownErr)
	} else {
		a.logger.Info("shutdown completed successfully")
	}

	if err := runHooks(hookCtx, a.hooks, afterStop); err != nil {
		a.logger.Error("after stop hook failed", "error", err)
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("after stop hook: %w", err))
	}

	return shutdownErr
}

func (a *Application) collectBackgroundErrors() <-chan error {
	bgModules := a.modules.backgroundModules()

	if len(bgModules) == 0 {
		return nil
	}

	merged := make(chan error, len(bgModules))
	var wg sync.WaitGroup

	for _, bg := range bgModules {
		wg.Add(1)
		go func(bg BackgroundModule) {
			defer wg.Done()
			if err, ok := <-bg.Err(); ok && err != nil {
				merged <- fmt.Errorf("background module %q: %w", bg.Name(), err)
			}
		}(bg)
	}

	go func() {
		wg.Wait()
		close(merged)
	}()

	return merged
}

func (a *Application) setupSignalHandler(ctx context.Context, cancelFn context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("received signal", "signal", sig.String())
		cancelFn()
	case <-ctx.Done():
		return
	}
}
