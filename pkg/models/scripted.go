package models

import (
	"context"
	"sync"

	genai "github.com/google/generative-ai-go/genai"
)

// ScriptedLLM is a lightweight model implementation useful for local testing
// without API calls. It replays queued replies in order and records every
// submission it receives.
type ScriptedLLM struct {
	mu      sync.Mutex
	replies []Reply
	errs    []error

	Histories [][]Message
	Toolsets  [][]*genai.Tool
}

func NewScriptedLLM() *ScriptedLLM {
	return &ScriptedLLM{}
}

// Reply queues a canned reply for a future Chat call.
func (s *ScriptedLLM) Reply(r Reply) *ScriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, r)
	s.errs = append(s.errs, nil)
	return s
}

// Fail queues an error for a future Chat call.
func (s *ScriptedLLM) Fail(err error) *ScriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, Reply{})
	s.errs = append(s.errs, err)
	return s
}

func (s *ScriptedLLM) Chat(_ context.Context, history []Message, toolset []*genai.Tool) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]Message, len(history))
	copy(snapshot, history)
	s.Histories = append(s.Histories, snapshot)
	s.Toolsets = append(s.Toolsets, toolset)

	if len(s.replies) == 0 {
		return Reply{Text: "scripted: out of replies"}, nil
	}
	reply, err := s.replies[0], s.errs[0]
	s.replies, s.errs = s.replies[1:], s.errs[1:]
	return reply, err
}

// Calls reports how many submissions have been received.
func (s *ScriptedLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Histories)
}

var _ ChatModel = (*ScriptedLLM)(nil)
