package registry

import "errors"

var (
	// ErrNotFound indicates a capability name that resolves to no
	// registered component.
	ErrNotFound = errors.New("component not found")

	// ErrDuplicate indicates a second component declared an
	// already-registered name. The registry keeps the first.
	ErrDuplicate = errors.New("component name already registered")

	// ErrNotReady indicates an invocation attempt before Init completed.
	ErrNotReady = errors.New("component is not initialized")

	// ErrDestroyed indicates an invocation attempt after Shutdown ran.
	ErrDestroyed = errors.New("component has been shut down")
)
