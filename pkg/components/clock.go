// Package components ships the built-in capabilities registered by the
// default runtime manifest.
package components

import (
	"context"
	"time"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// Clock reports the current UTC time in RFC3339 format.
type Clock struct{}

func NewClock() component.Component { return &Clock{} }

func (c *Clock) Descriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "clock",
		Description: "Returns the current UTC date and time.",
	}
}

func (c *Clock) Init(context.Context) error     { return nil }
func (c *Clock) Shutdown(context.Context) error { return nil }

func (c *Clock) Invoke(context.Context, map[string]any) (component.Result, error) {
	return component.Result{Content: time.Now().UTC().Format(time.RFC3339)}, nil
}
