package component

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification with errors.Is.
var (
	// ErrInit indicates a component failed its one-time setup. The
	// component is excluded from the registry; discovery continues.
	ErrInit = errors.New("component initialization failed")

	// ErrInvalidArguments indicates a model-supplied argument map did not
	// satisfy the component's declared parameters.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrUnsupportedType indicates a declared parameter type that cannot
	// be translated into the provider tool schema.
	ErrUnsupportedType = errors.New("unsupported parameter type")
)

// InitError wraps a component's setup failure with its name.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("component %s: init: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Is reports sentinel membership so callers can use errors.Is(err, ErrInit).
func (e *InitError) Is(target error) bool { return target == ErrInit }

// ArgumentError describes a single argument-validation failure.
type ArgumentError struct {
	Component string
	Param     string
	Reason    string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("component %s: argument %s: %s", e.Component, e.Param, e.Reason)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArguments }
