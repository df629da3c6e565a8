package deepcall

import (
	"fmt"
	"slices"
	"sync"
)

// moduleSet holds the application's modules in registration order. What a
// module can do beyond the Module contract (publish components, run in the
// background, report health) is recorded once when it is added, so the
// lifecycle never has to probe the whole set again.
type moduleSet struct {
	mu     sync.RWMutex
	sealed bool
	byName map[string]Module
	order  []Module

	providers   []namedProvider
	background  []BackgroundModule
	healthCheck []namedChecker
}

type namedProvider struct {
	name string
	ComponentProvider
}

type namedChecker struct {
	name string
	HealthChecker
}

func newModuleSet() *moduleSet {
	return &moduleSet{byName: make(map[string]Module)}
}

func (s *moduleSet) add(module Module) error {
	name := module.Name()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.sealed:
		return ErrRegistrationClosed
	case name == "":
		return ErrModuleNameEmpty
	}
	if _, taken := s.byName[name]; taken {
		return fmt.Errorf("%w: %s", ErrModuleAlreadyRegistered, name)
	}

	s.byName[name] = module
	s.order = append(s.order, module)
	if p, ok := module.(ComponentProvider); ok {
		s.providers = append(s.providers, namedProvider{name: name, ComponentProvider: p})
	}
	if bg, ok := module.(BackgroundModule); ok {
		s.background = append(s.background, bg)
	}
	if hc, ok := module.(HealthChecker); ok {
		s.healthCheck = append(s.healthCheck, namedChecker{name: name, HealthChecker: hc})
	}
	return nil
}

// seal closes the set to further additions once the application runs.
func (s *moduleSet) seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

func (s *moduleSet) all() []Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// componentProviders returns the modules that publish components, in
// registration order.
func (s *moduleSet) componentProviders() []namedProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.providers)
}

func (s *moduleSet) backgroundModules() []BackgroundModule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.background)
}

func (s *moduleSet) healthCheckers() []namedChecker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.healthCheck)
}
