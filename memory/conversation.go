package memory

import (
	"fmt"
	"sync"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Turn is a single role/content pair in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered, growing sequence of turns.
//
// The turn slice is guarded by mu. exchange is held for the whole of a
// chat exchange so that a user turn and its reply stay adjacent.
type Conversation struct {
	mu       sync.RWMutex
	turns    []Turn
	exchange sync.Mutex
}

// NewConversation returns a conversation seeded with one system turn.
func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{turns: []Turn{{Role: RoleSystem, Content: systemPrompt}}}
}

// AppendUser adds a user turn to the tail.
func (c *Conversation) AppendUser(content string) {
	c.append(Turn{Role: RoleUser, Content: content})
}

// AppendAssistant adds an assistant turn to the tail.
func (c *Conversation) AppendAssistant(content string) {
	c.append(Turn{Role: RoleAssistant, Content: content})
}

func (c *Conversation) append(t Turn) {
	c.mu.Lock()
	c.turns = append(c.turns, t)
	c.mu.Unlock()
}

// Snapshot returns a copy of the full ordered sequence.
func (c *Conversation) Snapshot() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns, system turn included.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Exclusive runs fn while holding the conversation's exchange lock.
// Concurrent exchanges on the same conversation run one after another.
func (c *Conversation) Exclusive(fn func()) {
	c.exchange.Lock()
	defer c.exchange.Unlock()
	fn()
}
