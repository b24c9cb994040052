package registry

import (
	"context"
	"sync"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// lifecycleState tracks where a managed instance sits in its strictly linear
// life: Unloaded -> Ready (Init) -> Destroyed (Shutdown).
type lifecycleState int

const (
	stateUnloaded lifecycleState = iota
	stateReady
	stateDestroyed
)

// Managed wraps a component instance with its captured descriptor and
// lifecycle state. Invocation is only legal while Ready; violations return a
// defined error rather than reaching component logic.
type Managed struct {
	mu    sync.RWMutex
	comp  component.Component
	desc  component.Descriptor
	state lifecycleState
}

// Descriptor returns the metadata captured at registration time.
func (m *Managed) Descriptor() component.Descriptor { return m.desc }

func (m *Managed) init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != stateUnloaded {
		return ErrDestroyed
	}
	if err := m.comp.Init(ctx); err != nil {
		return &component.InitError{Component: m.desc.Name, Err: err}
	}
	m.state = stateReady
	return nil
}

// Invoke validates the arguments against the descriptor and dispatches to the
// component. The read lock keeps teardown from running under an in-flight
// invocation.
func (m *Managed) Invoke(ctx context.Context, args map[string]any) (component.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch m.state {
	case stateUnloaded:
		return component.Result{}, ErrNotReady
	case stateDestroyed:
		return component.Result{}, ErrDestroyed
	}
	if err := m.desc.ValidateArgs(args); err != nil {
		return component.Result{}, err
	}
	return m.comp.Invoke(ctx, args)
}

// terminate drives the Ready -> Destroyed transition. It is safe to call more
// than once; only the first call reaches the component.
func (m *Managed) terminate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == stateDestroyed {
		return nil
	}
	m.state = stateDestroyed
	return m.comp.Shutdown(ctx)
}
