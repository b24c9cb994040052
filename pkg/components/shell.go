package components

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/genesis-core/go-genesis/pkg/component"
)

const defaultShellTimeout = 30 * time.Second

// Shell executes shell commands and returns their output. Each invocation
// is bounded by a timeout so a hung command cannot stall the tool loop.
type Shell struct {
	Dir     string
	Timeout time.Duration
}

func NewShell(dir string, timeout time.Duration) component.Component {
	if timeout <= 0 {
		timeout = defaultShellTimeout
	}
	return &Shell{Dir: dir, Timeout: timeout}
}

func (s *Shell) Descriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "shell",
		Description: "Executes a shell command and returns its output.",
		Params: []component.Param{
			{
				Name:        "command",
				Type:        component.TypeString,
				Description: "The shell command to execute.",
				Required:    true,
			},
		},
	}
}

func (s *Shell) Init(context.Context) error     { return nil }
func (s *Shell) Shutdown(context.Context) error { return nil }

func (s *Shell) Invoke(ctx context.Context, args map[string]any) (component.Result, error) {
	command := strings.TrimSpace(fmt.Sprint(args["command"]))
	if command == "" {
		return component.Result{}, fmt.Errorf("empty command")
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = s.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return component.Result{}, fmt.Errorf("command timed out after %s", s.Timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return component.Result{
				Content: fmt.Sprintf("Error executing command (exit %d): %s",
					exitErr.ExitCode(), strings.TrimSpace(stderr.String())),
				Metadata: map[string]string{"exit_code": fmt.Sprint(exitErr.ExitCode())},
			}, nil
		}
		return component.Result{}, fmt.Errorf("run %q: %w", command, err)
	}

	return component.Result{
		Content:  stdout.String(),
		Metadata: map[string]string{"exit_code": "0"},
	}, nil
}
