package bridge

import (
	"sync"

	"github.com/genesis-core/go-genesis/pkg/models"
)

// Conversation is one session's append-only message history. A failed turn
// rolls the history back to its state before the turn started, so a retry
// sees a clean transcript.
type Conversation struct {
	mu       sync.Mutex
	messages []models.Message
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Messages returns a snapshot of the history.
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of recorded messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *Conversation) append(msgs ...models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msgs...)
}

func (c *Conversation) truncate(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < len(c.messages) {
		c.messages = c.messages[:n]
	}
}

func (c *Conversation) snapshot() []models.Message {
	return c.Messages()
}
