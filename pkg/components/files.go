package components

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// resolvePath confines a requested path to the workspace root. Relative paths
// are joined onto the root; anything resolving outside it is rejected.
func resolvePath(root, path string) (string, error) {
	if root == "" {
		return path, nil
	}
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(root, resolved)
	}
	resolved = filepath.Clean(resolved)
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace", path)
	}
	return resolved, nil
}

// FileReader reads the content of a specified file under the workspace root.
type FileReader struct {
	Root string
}

func NewFileReader(root string) component.Component { return &FileReader{Root: root} }

func (f *FileReader) Descriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "read_file",
		Description: "Reads and returns the content of a file.",
		Params: []component.Param{
			{
				Name:        "path",
				Type:        component.TypeString,
				Description: "The path to the file to read.",
				Required:    true,
			},
		},
	}
}

func (f *FileReader) Init(context.Context) error     { return nil }
func (f *FileReader) Shutdown(context.Context) error { return nil }

func (f *FileReader) Invoke(_ context.Context, args map[string]any) (component.Result, error) {
	path, err := resolvePath(f.Root, fmt.Sprint(args["path"]))
	if err != nil {
		return component.Result{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return component.Result{}, fmt.Errorf("read %q: %w", path, err)
	}
	return component.Result{
		Content:  string(content),
		Metadata: map[string]string{"path": path},
	}, nil
}

// FileWriter writes data to a file under the workspace root. Writes append
// unless overwrite is set, matching how the agent accumulates notes.
type FileWriter struct {
	Root string
}

func NewFileWriter(root string) component.Component { return &FileWriter{Root: root} }

func (f *FileWriter) Descriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "write_file",
		Description: "Writes content to a file, appending by default.",
		Params: []component.Param{
			{
				Name:        "path",
				Type:        component.TypeString,
				Description: "The path to the file.",
				Required:    true,
			},
			{
				Name:        "content",
				Type:        component.TypeString,
				Description: "The content to write.",
				Required:    true,
			},
			{
				Name:        "overwrite",
				Type:        component.TypeBoolean,
				Description: "Replace the file instead of appending.",
			},
		},
	}
}

func (f *FileWriter) Init(context.Context) error     { return nil }
func (f *FileWriter) Shutdown(context.Context) error { return nil }

func (f *FileWriter) Invoke(_ context.Context, args map[string]any) (component.Result, error) {
	path, err := resolvePath(f.Root, fmt.Sprint(args["path"]))
	if err != nil {
		return component.Result{}, err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if overwrite, _ := args["overwrite"].(bool); overwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return component.Result{}, fmt.Errorf("open %q: %w", path, err)
	}
	defer file.Close()

	content := fmt.Sprint(args["content"])
	if _, err := file.WriteString(content); err != nil {
		return component.Result{}, fmt.Errorf("write %q: %w", path, err)
	}
	return component.Result{
		Content:  fmt.Sprintf("Successfully wrote content to %q", path),
		Metadata: map[string]string{"path": path, "bytes": fmt.Sprint(len(content))},
	}, nil
}
