package runtime

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/genesis-core/go-genesis/pkg/bridge"
	"github.com/genesis-core/go-genesis/pkg/models"
)

// Session encapsulates the conversational context for a single user.
type Session struct {
	runtime      *Runtime
	id           string
	conversation *bridge.Conversation
}

// ID returns the unique identifier associated with the session.
func (s *Session) ID() string { return s.id }

// History returns a snapshot of the session's conversation so far.
func (s *Session) History() []models.Message {
	return s.conversation.Messages()
}

type sessionManager struct {
	runtime *Runtime

	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionManager(rt *Runtime) *sessionManager {
	return &sessionManager{
		runtime:  rt,
		sessions: make(map[string]*Session),
	}
}

func (m *sessionManager) newSession(id string) *Session {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	session := &Session{
		runtime:      m.runtime,
		id:           id,
		conversation: bridge.NewConversation(),
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	return session
}

func (m *sessionManager) getSession(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return session, nil
}

func (m *sessionManager) removeSession(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *sessionManager) activeIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
