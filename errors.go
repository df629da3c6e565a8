package deepcall

import "errors"

var (
	ErrApplicationAlreadyRunning  = errors.New("application is already running")
	ErrGracefulShutdownTimedOut   = errors.New("graceful shutdown timed out")
	ErrRegistrationClosed         = errors.New("registration is closed: application already started")
	ErrModuleAlreadyRegistered    = errors.New("module already registered")
	ErrModuleNameEmpty            = errors.New("module name must not be empty")
	ErrAppNameEmpty               = errors.New("application name must not be empty")
	ErrShutdownTimeoutNonPositive = errors.New("shutdown timeout must be positive or zero")
	ErrRegistryNil                = errors.New("component registry must not be nil")
)

// Component shape errors. The registry never returns these; they are attached
// to the warning it logs so that log sinks and tests can classify the
// condition with errors.Is.
var (
	ErrDuplicateComponent    = errors.New("component already registered")
	ErrUnknownComponent      = errors.New("component not registered")
	ErrMethodNotFound        = errors.New("component method not found")
	ErrComponentIDEmpty      = errors.New("component id must not be empty")
	ErrComponentMethodsEmpty = errors.New("component methods must not be empty")
)

var (
	ErrArgumentDecode = errors.New("cannot decode method argument")
	ErrAsyncPanic     = errors.New("async method panicked")
)
