// Package mcp implements a small Model Context Protocol client covering the
// tooling surface the runtime needs: listing a server's tools and calling
// them over a stdio transport.
package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	json "github.com/alpkeskin/gotoon"
)

const protocolVersion = "2024-05-01"

// Tool describes one remote tool as advertised by the server.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// Content is one part of a tool invocation result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// CallResult is the structured output of a tool invocation.
type CallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Text joins the textual parts of the result with newlines.
func (r CallResult) Text() string {
	var segments []string
	for _, part := range r.Content {
		if part.Type != "text" {
			continue
		}
		if trimmed := strings.TrimSpace(part.Text); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return strings.Join(segments, "\n")
}

// Transport moves raw JSON-RPC payloads to and from the server.
type Transport interface {
	Send(ctx context.Context, payload []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// ServerInfo is the metadata captured from the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Client speaks JSON-RPC 2.0 to one MCP server. Calls are serialized; the
// protocol on a single transport is request/response.
type Client struct {
	transport Transport
	nextID    atomic.Uint64
	mu        sync.Mutex
	closed    atomic.Bool

	serverInfo ServerInfo
}

// Connect performs the initialize handshake over the transport. The transport
// is closed if the handshake fails.
func Connect(ctx context.Context, transport Transport, clientName string) (*Client, error) {
	if transport == nil {
		return nil, errors.New("mcp: nil transport")
	}
	if strings.TrimSpace(clientName) == "" {
		clientName = "genesis"
	}

	c := &Client{transport: transport}
	params := map[string]any{
		"protocolVersion": protocolVersion,
		"clientInfo":      map[string]string{"name": clientName, "version": "dev"},
		"capabilities": map[string]any{
			"tools": map[string]bool{"list": true, "call": true},
		},
	}
	var resp struct {
		ProtocolVersion string     `json:"protocolVersion"`
		ServerInfo      ServerInfo `json:"serverInfo"`
	}
	if err := c.call(ctx, "initialize", params, &resp); err != nil {
		transport.Close()
		return nil, fmt.Errorf("mcp: initialize: %w", err)
	}
	c.serverInfo = resp.ServerInfo
	return c, nil
}

// Server returns the remote server's handshake metadata.
func (c *Client) Server() ServerInfo { return c.serverInfo }

// Close releases the transport. Close is idempotent.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.transport.Close()
}

// ListTools retrieves every tool the server exposes, following pagination
// cursors when present.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var (
		cursor string
		tools  []Tool
	)
	for {
		params := map[string]any{}
		if cursor != "" {
			params["cursor"] = cursor
		}
		var resp struct {
			Tools      []Tool `json:"tools"`
			NextCursor string `json:"nextCursor,omitempty"`
		}
		if err := c.call(ctx, "tools/list", params, &resp); err != nil {
			return nil, err
		}
		tools = append(tools, resp.Tools...)
		if strings.TrimSpace(resp.NextCursor) == "" {
			return tools, nil
		}
		cursor = resp.NextCursor
	}
}

// CallTool invokes a named tool. A result the server flags as an error is
// returned as a Go error carrying the tool's textual output.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (CallResult, error) {
	if strings.TrimSpace(name) == "" {
		return CallResult{}, errors.New("mcp: tool name is required")
	}
	params := map[string]any{"name": name}
	if len(arguments) > 0 {
		params["arguments"] = arguments
	}
	var result CallResult
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return CallResult{}, err
	}
	if result.IsError {
		message := strings.TrimSpace(result.Text())
		if message == "" {
			message = "tool reported an error"
		}
		return result, fmt.Errorf("mcp: tool %s failed: %s", name, message)
	}
	return result, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcEnvelope struct {
	ID     *string         `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	if c.closed.Load() {
		return errors.New("mcp: client is closed")
	}

	id := strconv.FormatUint(c.nextID.Add(1), 10)
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("mcp: marshal request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.transport.Send(ctx, payload); err != nil {
		return err
	}

	// Skip notifications and stray responses until our id comes back.
	for {
		msg, err := c.transport.Receive(ctx)
		if err != nil {
			return err
		}
		var env rpcEnvelope
		if err := json.Unmarshal(msg, &env); err != nil {
			return fmt.Errorf("mcp: decode response: %w", err)
		}
		if env.Method != "" || env.ID == nil || *env.ID != id {
			continue
		}
		if env.Error != nil {
			return fmt.Errorf("mcp: %s: %s", method, env.Error.Message)
		}
		if out != nil && len(env.Result) > 0 {
			if err := json.Unmarshal(env.Result, out); err != nil {
				return fmt.Errorf("mcp: decode result: %w", err)
			}
		}
		return nil
	}
}

// ----------------------------------------------------------------------------
// Framed transport

// framedTransport speaks Content-Length framed JSON-RPC over a byte stream.
type framedTransport struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
	closers []io.Closer
}

// NewFramedTransport wraps a reader/writer pair in Content-Length framing.
// Closers are closed, in order, when the transport closes.
func NewFramedTransport(r io.Reader, w io.Writer, closers ...io.Closer) Transport {
	return &framedTransport{reader: bufio.NewReader(r), writer: w, closers: closers}
}

func (t *framedTransport) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := fmt.Fprintf(t.writer, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err := t.writer.Write(payload)
	return err
}

func (t *framedTransport) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	length := -1
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			length, err = strconv.Atoi(strings.TrimSpace(line[len("content-length:"):]))
			if err != nil {
				return nil, fmt.Errorf("mcp: invalid content length: %w", err)
			}
		}
	}
	if length < 0 {
		return nil, errors.New("mcp: missing Content-Length header")
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(t.reader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (t *framedTransport) Close() error {
	var err error
	for _, closer := range t.closers {
		if e := closer.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
