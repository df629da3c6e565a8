package deepcall

import "context"

type Module interface {
	Name() string
	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type BackgroundModule interface {
	Module
	Err() <-chan error
}

type HealthChecker interface {
	Health(ctx context.Context) error
}

// Component is a methods bag a module publishes while the application runs.
type Component struct {
	ID        string
	Methods   Methods
	Overwrite bool
}

// ComponentProvider is implemented by modules that publish components. The
// components are registered after every module is initialized and withdrawn
// after the modules are stopped.
type ComponentProvider interface {
	Components() []Component
}
