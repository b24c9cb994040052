// Package schema translates capability descriptors into the Gemini tool
// declaration format. Translation is pure and deterministic; the toolset is
// regenerated from the registry every time it is sent to the model.
package schema

import (
	"fmt"

	genai "github.com/google/generative-ai-go/genai"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// ErrUnsupportedType mirrors component.ErrUnsupportedType so callers can
// classify translation failures without importing both packages.
var ErrUnsupportedType = component.ErrUnsupportedType

// Translate maps one descriptor into a Gemini function declaration. Parameter
// optionality and types are preserved exactly; an unsupported type fails the
// whole component so it can be excluded at discovery time.
func Translate(desc component.Descriptor) (*genai.FunctionDeclaration, error) {
	properties := make(map[string]*genai.Schema, len(desc.Params))
	var required []string

	for _, p := range desc.Params {
		t, err := scalarType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("component %s parameter %s: %w", desc.Name, p.Name, err)
		}
		properties[p.Name] = &genai.Schema{
			Type:        t,
			Description: p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	decl := &genai.FunctionDeclaration{
		Name:        desc.Name,
		Description: desc.Description,
	}
	if len(properties) > 0 {
		decl.Parameters = &genai.Schema{
			Type:       genai.TypeObject,
			Properties: properties,
			Required:   required,
		}
	}
	return decl, nil
}

// Toolset builds the advertised toolset from a slice of descriptors in the
// order given. Callers are expected to pass descriptors that already survived
// Translate at discovery time, so errors here indicate a programming mistake.
func Toolset(descs []component.Descriptor) ([]*genai.Tool, error) {
	if len(descs) == 0 {
		return nil, nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(descs))
	for _, d := range descs {
		decl, err := Translate(d)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}, nil
}

func scalarType(t component.ParamType) (genai.Type, error) {
	switch t {
	case component.TypeString:
		return genai.TypeString, nil
	case component.TypeNumber:
		return genai.TypeNumber, nil
	case component.TypeInteger:
		return genai.TypeInteger, nil
	case component.TypeBoolean:
		return genai.TypeBoolean, nil
	default:
		return genai.TypeUnspecified, fmt.Errorf("%w: %q", ErrUnsupportedType, t)
	}
}
