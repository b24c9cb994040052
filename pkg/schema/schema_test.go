package schema

import (
	"errors"
	"testing"

	genai "github.com/google/generative-ai-go/genai"

	"github.com/genesis-core/go-genesis/pkg/component"
)

func TestTranslatePreservesOptionality(t *testing.T) {
	desc := component.Descriptor{
		Name:        "logger",
		Description: "Records a log entry.",
		Params: []component.Param{
			{Name: "message", Type: component.TypeString, Required: true},
			{Name: "level", Type: component.TypeString, Description: "Severity.", Required: false},
		},
	}

	decl, err := Translate(desc)
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if decl.Name != "logger" {
		t.Fatalf("unexpected name %q", decl.Name)
	}
	if decl.Parameters == nil || decl.Parameters.Type != genai.TypeObject {
		t.Fatalf("expected object parameter schema, got %+v", decl.Parameters)
	}
	if len(decl.Parameters.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(decl.Parameters.Properties))
	}
	if len(decl.Parameters.Required) != 1 || decl.Parameters.Required[0] != "message" {
		t.Fatalf("required list not preserved: %v", decl.Parameters.Required)
	}
	if decl.Parameters.Properties["level"].Description != "Severity." {
		t.Fatalf("parameter description dropped")
	}
}

func TestTranslateScalarTypes(t *testing.T) {
	cases := []struct {
		in   component.ParamType
		want genai.Type
	}{
		{component.TypeString, genai.TypeString},
		{component.TypeNumber, genai.TypeNumber},
		{component.TypeInteger, genai.TypeInteger},
		{component.TypeBoolean, genai.TypeBoolean},
	}
	for _, tc := range cases {
		desc := component.Descriptor{
			Name:   "probe",
			Params: []component.Param{{Name: "v", Type: tc.in}},
		}
		decl, err := Translate(desc)
		if err != nil {
			t.Fatalf("Translate(%s) returned error: %v", tc.in, err)
		}
		if got := decl.Parameters.Properties["v"].Type; got != tc.want {
			t.Fatalf("Translate(%s) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTranslateRejectsUnsupportedType(t *testing.T) {
	desc := component.Descriptor{
		Name:   "bad",
		Params: []component.Param{{Name: "blob", Type: component.ParamType("bytes")}},
	}
	if _, err := Translate(desc); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestTranslateNoParams(t *testing.T) {
	decl, err := Translate(component.Descriptor{Name: "clock", Description: "Reports the time."})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if decl.Parameters != nil {
		t.Fatalf("expected nil parameter schema for parameterless component")
	}
}

func TestToolsetOneDeclarationPerDescriptor(t *testing.T) {
	descs := []component.Descriptor{
		{Name: "alpha"},
		{Name: "beta", Params: []component.Param{{Name: "x", Type: component.TypeNumber, Required: true}}},
	}
	tools, err := Toolset(descs)
	if err != nil {
		t.Fatalf("Toolset returned error: %v", err)
	}
	if len(tools) != 1 {
		t.Fatalf("expected a single tool wrapper, got %d", len(tools))
	}
	decls := tools[0].FunctionDeclarations
	if len(decls) != 2 || decls[0].Name != "alpha" || decls[1].Name != "beta" {
		t.Fatalf("declaration order not preserved: %+v", decls)
	}
}

func TestToolsetEmpty(t *testing.T) {
	tools, err := Toolset(nil)
	if err != nil {
		t.Fatalf("Toolset returned error: %v", err)
	}
	if tools != nil {
		t.Fatalf("expected nil toolset for empty registry")
	}
}
