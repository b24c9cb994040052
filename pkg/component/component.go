// Package component defines the contract every Genesis capability implements.
// A component is a self-contained unit of agent functionality that the runtime
// advertises to the language model as a callable tool.
package component

import (
	"context"
	"fmt"
	"strings"
)

// ParamType is the semantic type of a declared parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
)

// Param declares a single named parameter of a component's Invoke entry point.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// Descriptor is the immutable metadata a component exposes for tool-schema
// generation. It is captured at registration time and never mutated.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
}

// Result is the serializable outcome of a component invocation, fed back into
// the conversation as a tool result.
type Result struct {
	Content  string
	Metadata map[string]string
}

// Component is the capability contract. Init is called exactly once before any
// invocation, Shutdown exactly once at teardown. Invoke is only legal between
// the two; the registry enforces the ordering.
type Component interface {
	// Descriptor returns the component's static metadata. It must be
	// stable across calls.
	Descriptor() Descriptor

	// Init performs one-time setup. An error excludes the component from
	// the registry without aborting discovery of its peers.
	Init(ctx context.Context) error

	// Invoke executes the capability with arguments already validated
	// against the descriptor. Errors are reported to the model as a tool
	// result, not raised to the conversation loop.
	Invoke(ctx context.Context, args map[string]any) (Result, error)

	// Shutdown releases resources. It must be safe to call even if Init
	// partially failed; failures are logged, never fatal.
	Shutdown(ctx context.Context) error
}

// Factory constructs a component instance. Manifests are lists of factories,
// enumerated at startup in place of filesystem introspection.
type Factory func() Component

// Validate checks the descriptor itself: a non-empty name, no duplicate
// parameter names, and only supported parameter types.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("component name is empty")
	}
	seen := make(map[string]struct{}, len(d.Params))
	for _, p := range d.Params {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("component %s declares an unnamed parameter", d.Name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("component %s declares parameter %s twice", d.Name, name)
		}
		seen[name] = struct{}{}
		switch p.Type {
		case TypeString, TypeNumber, TypeInteger, TypeBoolean:
		default:
			return fmt.Errorf("component %s parameter %s: %w: %q", d.Name, name, ErrUnsupportedType, p.Type)
		}
	}
	return nil
}

// ValidateArgs checks a model-supplied argument map against the descriptor
// before the component is invoked. Missing required parameters, unknown
// parameters and type mismatches all fail with an ArgumentError without
// reaching component logic.
func (d Descriptor) ValidateArgs(args map[string]any) error {
	declared := make(map[string]Param, len(d.Params))
	for _, p := range d.Params {
		declared[p.Name] = p
	}
	for name := range args {
		if _, ok := declared[name]; !ok {
			return &ArgumentError{Component: d.Name, Param: name, Reason: "not declared"}
		}
	}
	for _, p := range d.Params {
		value, present := args[p.Name]
		if !present {
			if p.Required {
				return &ArgumentError{Component: d.Name, Param: p.Name, Reason: "required parameter missing"}
			}
			continue
		}
		if err := checkType(p.Type, value); err != nil {
			return &ArgumentError{Component: d.Name, Param: p.Name, Reason: err.Error()}
		}
	}
	return nil
}

func checkType(want ParamType, value any) error {
	switch want {
	case TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case TypeNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64:
		default:
			return fmt.Errorf("expected number, got %T", value)
		}
	case TypeInteger:
		switch v := value.(type) {
		case int, int32, int64:
		case float64:
			// JSON decoding yields float64 for every numeric literal.
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
		default:
			return fmt.Errorf("expected integer, got %T", value)
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, want)
	}
	return nil
}
