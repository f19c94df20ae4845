package provider

import (
	"context"
	"sync"

	"github.com/petasbytes/advisor-relay/memory"
)

// Lazy builds its Completer on first use and reuses it afterwards.
// A failed build is not cached, so every call retries it and returns the
// build error until it succeeds.
type Lazy struct {
	build func() (Completer, error)

	mu sync.Mutex
	c  Completer
}

// NewLazy returns a Lazy that calls build on first use.
func NewLazy(build func() (Completer, error)) *Lazy {
	return &Lazy{build: build}
}

// Get returns the shared Completer, building it if needed.
func (l *Lazy) Get() (Completer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.c != nil {
		return l.c, nil
	}
	c, err := l.build()
	if err != nil {
		return nil, err
	}
	l.c = c
	return c, nil
}

// Complete implements Completer.
func (l *Lazy) Complete(ctx context.Context, turns []memory.Turn, p Params) (string, error) {
	c, err := l.Get()
	if err != nil {
		return "", err
	}
	return c.Complete(ctx, turns, p)
}

var _ Completer = (*Lazy)(nil)
