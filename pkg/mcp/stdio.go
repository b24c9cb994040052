package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// StdioConfig describes how to spawn an MCP server over stdio.
type StdioConfig struct {
	Command string
	Args    []string
	Dir     string
	Env     []string

	// Stderr receives the server's standard error stream. Defaults to
	// os.Stderr.
	Stderr io.Writer

	// ClientName identifies this runtime in the handshake.
	ClientName string
}

// Spawn starts the configured command and connects over its stdin/stdout
// pipes. The caller closes the returned client to end the session; the
// transport also closes itself when the server process exits, unblocking
// any pending read.
func Spawn(ctx context.Context, cfg StdioConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("mcp: stdio command is required")
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	cmd.Stderr = cfg.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("mcp: stdout pipe: %w", err)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("mcp: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("mcp: start command: %w", err)
	}

	transport := NewFramedTransport(stdout, stdin, stdin, stdout)
	client, err := Connect(ctx, transport, cfg.ClientName)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	var once sync.Once
	go func() {
		_ = cmd.Wait()
		once.Do(func() { _ = transport.Close() })
	}()

	return client, nil
}
