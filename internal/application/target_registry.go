package application

import (
	"fmt"
	"sync"

	"github.com/lf-go/pretsched/infrastructure/targets"
	"github.com/lf-go/pretsched/internal/ports"
)

// TargetFactoryFunc constructs a ports.TargetTypes adapter for one target
// language. Factories validate their own options and return descriptive
// errors for unsupported configurations.
type TargetFactoryFunc func(options map[string]any) (ports.TargetTypes, error)

// TargetRegistry manages target-language factories, letting the codegen
// pipeline stay ignorant of which concrete targets are compiled in.
// The zero value is not usable; use NewTargetRegistry.
type TargetRegistry struct {
	mu        sync.RWMutex
	factories map[string]TargetFactoryFunc
}

// NewTargetRegistry returns an empty TargetRegistry.
func NewTargetRegistry() *TargetRegistry {
	return &TargetRegistry{factories: make(map[string]TargetFactoryFunc)}
}

// Register adds a factory for a target name. Panics if the name is
// already registered: duplicate registration is a programming error that
// should fail fast during initialization.
func (r *TargetRegistry) Register(name string, factory TargetFactoryFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("target %q already registered", name))
	}
	r.factories[name] = factory
}

// CreateTarget builds the named target's ports.TargetTypes adapter.
func (r *TargetRegistry) CreateTarget(name string, options map[string]any) (ports.TargetTypes, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", targets.ErrUnsupportedTarget, name)
	}
	return factory(options)
}

// GetSupportedTargets returns every registered target name. The returned
// slice is a copy and can be safely modified.
func (r *TargetRegistry) GetSupportedTargets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// RegisterBuiltinTargets registers the C, Python, and TypeScript target
// adapters. Call once during initialization.
func (r *TargetRegistry) RegisterBuiltinTargets() {
	r.Register("c", func(map[string]any) (ports.TargetTypes, error) { return targets.NewCTarget(), nil })
	r.Register("python", func(map[string]any) (ports.TargetTypes, error) { return targets.NewPythonTarget(), nil })
	r.Register("typescript", func(map[string]any) (ports.TargetTypes, error) { return targets.NewTypeScriptTarget(), nil })
}

// ApplyTargetMiddleware wraps base with mws in order, so the first
// middleware in mws is outermost and sees every call first.
func ApplyTargetMiddleware(base ports.TargetTypes, mws ...ports.TargetMiddleware) ports.TargetTypes {
	wrapped := base
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}
