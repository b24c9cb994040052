package components

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// Explorer lists directory contents under the workspace root.
type Explorer struct {
	Root string
}

func NewExplorer(root string) component.Component { return &Explorer{Root: root} }

func (e *Explorer) Descriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "list_dir",
		Description: "Lists the files and subdirectories within a directory.",
		Params: []component.Param{
			{
				Name:        "path",
				Type:        component.TypeString,
				Description: "The directory to explore. Defaults to the workspace root.",
			},
		},
	}
}

func (e *Explorer) Init(context.Context) error     { return nil }
func (e *Explorer) Shutdown(context.Context) error { return nil }

func (e *Explorer) Invoke(_ context.Context, args map[string]any) (component.Result, error) {
	requested := "."
	if raw, ok := args["path"]; ok {
		requested = fmt.Sprint(raw)
	}
	path, err := resolvePath(e.Root, requested)
	if err != nil {
		return component.Result{}, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return component.Result{}, fmt.Errorf("list %q: %w", path, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Contents of %q:\n", path)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	return component.Result{
		Content:  strings.TrimRight(sb.String(), "\n"),
		Metadata: map[string]string{"entries": fmt.Sprint(len(entries))},
	}, nil
}
