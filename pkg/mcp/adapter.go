package mcp

import (
	"context"
	"fmt"
	"sort"

	json "github.com/alpkeskin/gotoon"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// Components lists the server's tools and wraps each one as a registry
// component. Tools whose schemas fail to decode are skipped; tools with
// parameter types the translator cannot express are surfaced as-is and
// excluded at registration. The client's lifecycle stays with the caller.
func Components(ctx context.Context, client *Client) ([]component.Factory, error) {
	tools, err := client.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("mcp: list tools: %w", err)
	}

	factories := make([]component.Factory, 0, len(tools))
	for _, tool := range tools {
		desc, err := descriptorFor(tool)
		if err != nil {
			continue
		}
		proxy := &toolComponent{client: client, desc: desc}
		factories = append(factories, func() component.Component { return proxy })
	}
	return factories, nil
}

// toolComponent proxies invocations of one remote tool.
type toolComponent struct {
	client *Client
	desc   component.Descriptor
}

func (t *toolComponent) Descriptor() component.Descriptor { return t.desc }
func (t *toolComponent) Init(context.Context) error       { return nil }
func (t *toolComponent) Shutdown(context.Context) error   { return nil }

func (t *toolComponent) Invoke(ctx context.Context, args map[string]any) (component.Result, error) {
	result, err := t.client.CallTool(ctx, t.desc.Name, args)
	if err != nil {
		return component.Result{}, err
	}
	return component.Result{
		Content:  result.Text(),
		Metadata: map[string]string{"source": "mcp"},
	}, nil
}

type inputSchema struct {
	Type       string `json:"type"`
	Properties map[string]struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"properties"`
	Required []string `json:"required"`
}

func descriptorFor(tool Tool) (component.Descriptor, error) {
	desc := component.Descriptor{Name: tool.Name, Description: tool.Description}
	if len(tool.InputSchema) == 0 {
		return desc, nil
	}

	var schema inputSchema
	if err := json.Unmarshal(tool.InputSchema, &schema); err != nil {
		return component.Descriptor{}, fmt.Errorf("mcp: decode schema for %s: %w", tool.Name, err)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := schema.Properties[name]
		desc.Params = append(desc.Params, component.Param{
			Name:        name,
			Type:        component.ParamType(prop.Type),
			Description: prop.Description,
			Required:    required[name],
		})
	}
	return desc, nil
}
