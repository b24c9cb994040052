package models

import (
	"context"
	"errors"
	"testing"

	genai "github.com/google/generative-ai-go/genai"
)

func TestScriptedLLMReplaysInOrder(t *testing.T) {
	s := NewScriptedLLM().
		Reply(Reply{Calls: []ToolCall{{Name: "clock"}}}).
		Reply(Reply{Text: "done"})

	first, err := s.Chat(context.Background(), []Message{{Role: RoleUser, Text: "hi"}}, nil)
	if err != nil {
		t.Fatalf("first chat: %v", err)
	}
	if len(first.Calls) != 1 || first.Calls[0].Name != "clock" {
		t.Fatalf("unexpected first reply: %+v", first)
	}

	second, err := s.Chat(context.Background(), []Message{{Role: RoleUser, Text: "hi"}}, nil)
	if err != nil {
		t.Fatalf("second chat: %v", err)
	}
	if second.Text != "done" {
		t.Fatalf("unexpected second reply: %+v", second)
	}
	if s.Calls() != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", s.Calls())
	}
}

func TestScriptedLLMQueuedFailure(t *testing.T) {
	boom := errors.New("boom")
	s := NewScriptedLLM().Fail(boom)
	if _, err := s.Chat(context.Background(), []Message{{Role: RoleUser, Text: "hi"}}, nil); !errors.Is(err, boom) {
		t.Fatalf("expected queued error, got %v", err)
	}
}

func TestScriptedLLMSnapshotsHistory(t *testing.T) {
	s := NewScriptedLLM().Reply(Reply{Text: "ok"})
	history := []Message{{Role: RoleUser, Text: "original"}}
	if _, err := s.Chat(context.Background(), history, nil); err != nil {
		t.Fatalf("chat: %v", err)
	}
	history[0].Text = "mutated"
	if got := s.Histories[0][0].Text; got != "original" {
		t.Fatalf("recorded history should be a snapshot, got %q", got)
	}
}

func TestToContentMapsRoles(t *testing.T) {
	user := toContent(&Message{Role: RoleUser, Text: "hello"})
	if user.Role != "user" || len(user.Parts) != 1 {
		t.Fatalf("unexpected user content: %+v", user)
	}

	model := toContent(&Message{
		Role:  RoleModel,
		Text:  "let me check",
		Calls: []ToolCall{{Name: "weather", Args: map[string]any{"city": "Oslo"}}},
	})
	if model.Role != "model" || len(model.Parts) != 2 {
		t.Fatalf("unexpected model content: %+v", model)
	}
	call, ok := model.Parts[1].(genai.FunctionCall)
	if !ok || call.Name != "weather" {
		t.Fatalf("expected function call part, got %T", model.Parts[1])
	}

	tool := toContent(&Message{
		Role: RoleTool,
		Results: []ToolResult{
			{Name: "weather", Content: "sunny"},
			{Name: "clock", Content: "lookup failed", IsError: true},
		},
	})
	if tool.Role != "function" || len(tool.Parts) != 2 {
		t.Fatalf("unexpected tool content: %+v", tool)
	}
	resp, ok := tool.Parts[1].(genai.FunctionResponse)
	if !ok {
		t.Fatalf("expected function response part, got %T", tool.Parts[1])
	}
	if resp.Response["error"] != true {
		t.Fatalf("error result should be flagged: %+v", resp.Response)
	}
}

func TestDecodeReplyCollectsTextAndCalls(t *testing.T) {
	reply := decodeReply(&genai.Content{
		Role: "model",
		Parts: []genai.Part{
			genai.Text("checking "),
			genai.FunctionCall{Name: "clock", Args: map[string]any{}},
			genai.Text("now"),
		},
	})
	if reply.Text != "checking now" {
		t.Fatalf("unexpected text: %q", reply.Text)
	}
	if len(reply.Calls) != 1 || reply.Calls[0].Name != "clock" {
		t.Fatalf("unexpected calls: %+v", reply.Calls)
	}
}
