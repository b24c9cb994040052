package components

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// Calculator evaluates basic arithmetic expressions in the form "a op b".
type Calculator struct{}

func NewCalculator() component.Component { return &Calculator{} }

func (c *Calculator) Descriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "calculator",
		Description: "Evaluates simple math expressions such as '2 + 2' or '5 * 3'.",
		Params: []component.Param{
			{
				Name:        "expression",
				Type:        component.TypeString,
				Description: "Expression in the form '<number> <operator> <number>'.",
				Required:    true,
			},
		},
	}
}

func (c *Calculator) Init(context.Context) error     { return nil }
func (c *Calculator) Shutdown(context.Context) error { return nil }

func (c *Calculator) Invoke(_ context.Context, args map[string]any) (component.Result, error) {
	expression := strings.TrimSpace(fmt.Sprint(args["expression"]))
	fields := strings.Fields(expression)
	if len(fields) != 3 {
		return component.Result{}, fmt.Errorf("expected format '<number> <op> <number>'")
	}

	left, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return component.Result{}, fmt.Errorf("invalid left operand: %w", err)
	}
	right, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return component.Result{}, fmt.Errorf("invalid right operand: %w", err)
	}

	var result float64
	switch fields[1] {
	case "+":
		result = left + right
	case "-":
		result = left - right
	case "*", "x", "X":
		result = left * right
	case "/":
		if math.Abs(right) < 1e-12 {
			return component.Result{}, fmt.Errorf("division by zero")
		}
		result = left / right
	default:
		return component.Result{}, fmt.Errorf("unsupported operator %q", fields[1])
	}

	return component.Result{Content: strconv.FormatFloat(result, 'f', -1, 64)}, nil
}
