package runtime

import (
	"context"
	"io"
	"testing"

	json "github.com/alpkeskin/gotoon"

	"github.com/genesis-core/go-genesis/pkg/mcp"
	"github.com/genesis-core/go-genesis/pkg/models"
)

// echoServer is an in-memory MCP transport exposing one echo tool.
type echoServer struct {
	pending [][]byte
}

func (s *echoServer) Send(_ context.Context, payload []byte) error {
	var req struct {
		ID     string          `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return err
	}

	var result any
	switch req.Method {
	case "initialize":
		result = map[string]any{
			"protocolVersion": "2024-05-01",
			"serverInfo":      map[string]string{"name": "echo-server", "version": "1.0"},
		}
	case "tools/list":
		result = map[string]any{
			"tools": []map[string]any{
				{
					"name":        "echo",
					"description": "Echoes the given text.",
					"inputSchema": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"text": map[string]any{"type": "string", "description": "Text to echo."},
						},
						"required": []string{"text"},
					},
				},
			},
		}
	case "tools/call":
		var call struct {
			Arguments map[string]any `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &call); err != nil {
			return err
		}
		result = map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "echo: " + call.Arguments["text"].(string)},
			},
		}
	}

	resp, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	if err != nil {
		return err
	}
	s.pending = append(s.pending, resp)
	return nil
}

func (s *echoServer) Receive(context.Context) ([]byte, error) {
	if len(s.pending) == 0 {
		return nil, io.EOF
	}
	msg := s.pending[0]
	s.pending = s.pending[1:]
	return msg, nil
}

func (s *echoServer) Close() error { return nil }

func TestRuntimeDispatchesToMCPTool(t *testing.T) {
	client, err := mcp.Connect(context.Background(), &echoServer{}, "test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	factories, err := mcp.Components(context.Background(), client)
	if err != nil {
		t.Fatalf("components: %v", err)
	}

	model := models.NewScriptedLLM().
		Reply(models.Reply{Calls: []models.ToolCall{{Name: "echo", Args: map[string]any{"text": "ping"}}}}).
		Reply(models.Reply{Text: "the tool said: echo: ping"})

	rt, err := New(context.Background(),
		WithComponents(factories...),
		WithModelLoader(scriptedLoader(model)),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer rt.Shutdown(context.Background())

	got, err := rt.Generate(context.Background(), "mcp", "echo ping")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "the tool said: echo: ping" {
		t.Fatalf("unexpected reply: %q", got)
	}

	session, _ := rt.GetSession("mcp")
	history := session.History()
	if history[2].Results[0].Content != "echo: ping" {
		t.Fatalf("unexpected tool result: %+v", history[2].Results)
	}
}
