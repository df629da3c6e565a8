package deepcall

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

type runner struct {
	modules    *moduleSet
	components *Registry
	logger     Logger

	mu        sync.Mutex
	published []Component
}

func (r *runner) initAll(ctx context.Context) error {
	for _, module := range r.modules.all() {
		r.logger.Info("initializing module", "module", module.Name())
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %q: %w", module.Name(), err)
		}
	}
	return nil
}

// publishAll registers the components of every ComponentProvider module and
// remembers the ones that actually landed in the registry.
func (r *runner) publishAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, provider := range r.modules.componentProviders() {
		for _, c := range provider.Components() {
			r.logger.Info("publishing component", "module", provider.name, "component", c.ID)
			r.components.Register(RegisterOptions{ID: c.ID, Methods: c.Methods, Overwrite: c.Overwrite})
			if sameMethods(r.components.Get(c.ID), c.Methods) {
				r.published = append(r.published, c)
			}
		}
	}
}

// withdrawAll unregisters published components in reverse order. Components
// that were replaced or removed by someone else in the meantime are left
// alone.
func (r *runner) withdrawAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.published) - 1; i >= 0; i-- {
		c := r.published[i]
		if !sameMethods(r.components.Get(c.ID), c.Methods) {
			r.logger.Info("component changed since publishing, leaving it registered", "component", c.ID)
			continue
		}
		r.logger.Info("withdrawing component", "component", c.ID)
		r.components.Unregister(c.ID)
	}
	r.published = nil
}

func (r *runner) startAll(ctx context.Context) (startedModules []Module, err error) {
	modules := r.modules.all()
	started := make([]Module, 0, len(modules))

	for _, module := range modules {
		r.logger.Info("starting module", "module", module.Name())
		if err := module.Start(ctx); err != nil {
			shutdownErr := r.shutdownModules(context.Background(), started)
			return nil, errors.Join(
				fmt.Errorf("start module %q: %w", module.Name(), err),
				shutdownErr,
			)
		}
		started = append(started, module)
	}

	return started, nil
}

func (r *runner) shutdownModules(ctx context.Context, modules []Module) error {
	var errs []error
	for i := len(modules) - 1; i >= 0; i-- {
		m := modules[i]
		r.logger.Info("stopping module", "module", m.Name())
		if err := m.Stop(ctx); err != nil {
			r.logger.Error("failed to stop module", "module", m.Name(), "error", err)
			errs = append(errs, fmt.Errorf("stop module %q: %w", m.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (r *runner) shutdownAll(ctx context.Context) error {
	return r.shutdownModules(ctx, r.modules.all())
}

// sameMethods reports whether a and b are the same map instance.
func sameMethods(a, b Methods) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}
