// Package registry holds the live component instances for a Genesis runtime
// and drives each through its lifecycle: initialize once at discovery, invoke
// on demand, terminate once at teardown.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/genesis-core/go-genesis/pkg/component"
	"github.com/genesis-core/go-genesis/pkg/schema"
)

// Registry maps capability names to managed component instances. Keys are
// lower-cased, registration order is preserved and the map is append-only for
// the lifetime of a session.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*Managed
	order      []string
	logger     *slog.Logger
}

// New constructs an empty registry. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		components: make(map[string]*Managed),
		logger:     logger,
	}
}

// Discover enumerates a manifest of component factories, validating and
// initializing each in order. A failure in one component is logged and skipped
// without aborting discovery of the rest. The returned descriptors are the
// capabilities that actually came up.
func (r *Registry) Discover(ctx context.Context, manifest []component.Factory) []component.Descriptor {
	var registered []component.Descriptor
	for _, factory := range manifest {
		if factory == nil {
			continue
		}
		desc, err := r.Register(ctx, factory())
		if err != nil {
			r.logger.Warn("component skipped", "component", desc.Name, "reason", err)
			continue
		}
		registered = append(registered, desc)
	}
	return registered
}

// Register validates a single instance against the capability contract,
// checks its descriptor translates into the provider tool schema, initializes
// it and adds it under its declared name. Duplicate names keep the first
// registration. The descriptor is returned even on failure so callers can log
// which component was rejected.
func (r *Registry) Register(ctx context.Context, instance component.Component) (component.Descriptor, error) {
	if instance == nil {
		return component.Descriptor{}, fmt.Errorf("component instance is nil")
	}
	desc := instance.Descriptor()

	if err := desc.Validate(); err != nil {
		return desc, err
	}
	// Fail unsupported schemas at discovery time, not mid-conversation.
	if _, err := schema.Translate(desc); err != nil {
		return desc, err
	}

	key := strings.ToLower(strings.TrimSpace(desc.Name))

	r.mu.Lock()
	if _, exists := r.components[key]; exists {
		r.mu.Unlock()
		return desc, fmt.Errorf("%w: %s", ErrDuplicate, desc.Name)
	}
	// Reserve the slot before the (possibly slow) Init so a concurrent
	// duplicate cannot race past the collision check.
	m := &Managed{comp: instance, desc: desc}
	r.components[key] = m
	r.order = append(r.order, key)
	r.mu.Unlock()

	if err := m.init(ctx); err != nil {
		r.remove(key)
		// Release whatever a partial Init may have acquired.
		if shutdownErr := instance.Shutdown(ctx); shutdownErr != nil {
			r.logger.Warn("cleanup after failed init", "component", desc.Name, "error", shutdownErr)
		}
		return desc, err
	}

	r.logger.Info("component registered", "component", desc.Name, "params", len(desc.Params))
	return desc, nil
}

func (r *Registry) remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.components, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Lookup resolves a capability name to its managed instance.
func (r *Registry) Lookup(name string) (*Managed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	m, ok := r.components[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return m, nil
}

// Descriptors returns a snapshot of registered capability descriptors in
// registration order. The toolset sent to the model is derived from this.
func (r *Registry) Descriptors() []component.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]component.Descriptor, 0, len(r.order))
	for _, key := range r.order {
		descs = append(descs, r.components[key].desc)
	}
	return descs
}

// Len reports the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Teardown terminates every registered component, continuing past individual
// failures so each one gets exactly one termination attempt. Calling it twice
// is safe; destroyed instances are skipped.
func (r *Registry) Teardown(ctx context.Context) error {
	r.mu.RLock()
	order := append([]string(nil), r.order...)
	components := make([]*Managed, 0, len(order))
	for _, key := range order {
		components = append(components, r.components[key])
	}
	r.mu.RUnlock()

	var errs []error
	for _, m := range components {
		if err := m.terminate(ctx); err != nil {
			r.logger.Warn("component shutdown failed", "component", m.desc.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", m.desc.Name, err))
		}
	}
	return errors.Join(errs...)
}
