package memory

import (
	"context"
	"strings"
	"sync"
)

// DefaultSession is used by callers that carry no session identifier.
// All of them share one conversation.
const DefaultSession = "default"

// Registry maps session IDs to their conversations.
type Registry struct {
	prompt string

	mu    sync.Mutex
	convs map[string]*Conversation
}

// NewRegistry returns an empty registry whose conversations are seeded with prompt.
func NewRegistry(prompt string) *Registry {
	return &Registry{prompt: prompt, convs: make(map[string]*Conversation)}
}

// Get returns the conversation for sessionID, creating it on first use.
// A blank sessionID resolves to DefaultSession.
func (r *Registry) Get(sessionID string) *Conversation {
	sessionID = NormalizeSession(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[sessionID]
	if !ok {
		c = NewConversation(r.prompt)
		r.convs[sessionID] = c
	}
	return c
}

// Sessions returns the number of live conversations.
func (r *Registry) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}

// NormalizeSession trims id and maps blank values to DefaultSession.
func NormalizeSession(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultSession
	}
	return id
}

type sessionKey struct{}

// WithSession returns a child context carrying the session ID.
func WithSession(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionKey{}, NormalizeSession(id))
}

// SessionFromContext returns the session ID stored in ctx, or DefaultSession.
func SessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return DefaultSession
	}
	if s, ok := ctx.Value(sessionKey{}).(string); ok && s != "" {
		return s
	}
	return DefaultSession
}
