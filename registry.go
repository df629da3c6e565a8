package deepcall

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Method is a callable published by a component. Arguments arrive
// positionally and are not checked against any declared signature; Func
// adapts ordinary Go funcs to this shape.
type Method func(ctx context.Context, args ...any) (any, error)

// Methods is the bag of callables a component publishes, keyed by name.
type Methods map[string]Method

type RegisterOptions struct {
	ID        string
	Methods   Methods
	Overwrite bool
}

type RegistryOption func(*Registry)

func WithRegistryLogger(logger Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry maps component ids to their methods. The zero value is an empty
// registry ready for use. Reads always observe the latest completed
// Register or Unregister.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Methods
	observers  []*observer
	logger     Logger

	// pending holds events in mutation order; delivering marks the
	// goroutine currently draining it.
	pending    []Event
	delivering bool
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{components: make(map[string]Methods)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register publishes methods under opts.ID. An id that is already taken is
// left untouched unless opts.Overwrite is set; the conflict is only reported
// to the logger.
func (r *Registry) Register(opts RegisterOptions) {
	if opts.ID == "" {
		r.log().Warn("cannot register component with an empty id", "error", ErrComponentIDEmpty)
		return
	}
	if len(opts.Methods) == 0 {
		r.log().Warn(
			fmt.Sprintf("cannot register component %q without methods", opts.ID),
			"component", opts.ID,
			"error", ErrComponentMethodsEmpty,
		)
		return
	}

	r.mu.Lock()
	if r.components == nil {
		r.components = make(map[string]Methods)
	}
	_, exists := r.components[opts.ID]
	if exists && !opts.Overwrite {
		r.mu.Unlock()
		r.log().Warn(
			fmt.Sprintf("component %q is already registered, set Overwrite to replace it", opts.ID),
			"component", opts.ID,
			"error", ErrDuplicateComponent,
		)
		return
	}
	r.components[opts.ID] = opts.Methods
	kind := ComponentRegistered
	if exists {
		kind = ComponentReplaced
	}
	r.pending = append(r.pending, Event{Kind: kind, ID: opts.ID, Methods: opts.Methods})
	r.mu.Unlock()

	r.log().Debug("component registered", "component", opts.ID, "methods", len(opts.Methods), "replaced", exists)
	r.notify()
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	methods, exists := r.components[id]
	if !exists {
		r.mu.Unlock()
		r.log().Warn(
			fmt.Sprintf("attempted to unregister non-existent component %q", id),
			"component", id,
			"error", ErrUnknownComponent,
		)
		return
	}
	delete(r.components, id)
	r.pending = append(r.pending, Event{Kind: ComponentUnregistered, ID: id, Methods: methods})
	r.mu.Unlock()

	r.log().Debug("component unregistered", "component", id)
	r.notify()
}

// Get returns the methods registered under id, or nil.
func (r *Registry) Get(id string) Methods {
	methods, _ := r.Lookup(id)
	return methods
}

func (r *Registry) Lookup(id string) (Methods, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods, ok := r.components[id]
	return methods, ok
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.components))
	for id := range r.components {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}

func (r *Registry) log() Logger {
	if r.logger == nil {
		return &noopLogger{}
	}
	return r.logger
}
