package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ---------------------------- Google Gemini ----------------------------------

// GeminiLLM talks to the Gemini API. SystemPrompt, when set, is delivered as
// the system instruction on every request.
type GeminiLLM struct {
	Client       *genai.Client
	Model        string
	SystemPrompt string
}

func NewGeminiLLM(ctx context.Context, model, systemPrompt string) (*GeminiLLM, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY or GOOGLE_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiLLM{Client: client, Model: model, SystemPrompt: systemPrompt}, nil
}

func (g *GeminiLLM) Chat(ctx context.Context, history []Message, toolset []*genai.Tool) (Reply, error) {
	if len(history) == 0 {
		return Reply{}, errors.New("gemini: empty history")
	}

	model := g.Client.GenerativeModel(g.Model)
	model.Tools = toolset
	if prompt := strings.TrimSpace(g.SystemPrompt); prompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt)}}
	}

	contents := make([]*genai.Content, 0, len(history))
	for i := range history {
		contents = append(contents, toContent(&history[i]))
	}

	// The final message travels as the sent turn; everything before it is
	// prior history on the chat session.
	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]
	resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return Reply{}, fmt.Errorf("gemini chat: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Reply{}, errors.New("gemini: empty response")
	}
	return decodeReply(resp.Candidates[0].Content), nil
}

// Close releases the underlying API client.
func (g *GeminiLLM) Close() error {
	if g.Client == nil {
		return nil
	}
	return g.Client.Close()
}

func toContent(m *Message) *genai.Content {
	switch m.Role {
	case RoleModel:
		parts := make([]genai.Part, 0, len(m.Calls)+1)
		if m.Text != "" {
			parts = append(parts, genai.Text(m.Text))
		}
		for _, call := range m.Calls {
			parts = append(parts, genai.FunctionCall{Name: call.Name, Args: call.Args})
		}
		return &genai.Content{Role: "model", Parts: parts}
	case RoleTool:
		parts := make([]genai.Part, 0, len(m.Results))
		for _, res := range m.Results {
			response := map[string]any{"content": res.Content}
			if res.IsError {
				response["error"] = true
			}
			parts = append(parts, genai.FunctionResponse{Name: res.Name, Response: response})
		}
		return &genai.Content{Role: "function", Parts: parts}
	default:
		return &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Text)}}
	}
}

func decodeReply(content *genai.Content) Reply {
	var reply Reply
	var text strings.Builder
	for _, part := range content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			reply.Calls = append(reply.Calls, ToolCall{Name: p.Name, Args: p.Args})
		}
	}
	reply.Text = text.String()
	return reply
}

var _ ChatModel = (*GeminiLLM)(nil)
