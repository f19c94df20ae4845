// Package provider talks to the upstream chat completion services.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/petasbytes/advisor-relay/memory"
)

var (
	// ErrMissingCredential is returned when the provider's API key is not set.
	ErrMissingCredential = errors.New("environment variable is not set")
	// ErrEmptyCompletion is returned when the upstream reply carries no text.
	ErrEmptyCompletion = errors.New("completion returned no choices")
	// ErrUnknownProvider is returned for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown completion provider")
)

const (
	NameGroq      = "groq"
	NameAnthropic = "anthropic"
)

// Params are the sampling parameters sent with every completion request.
type Params struct {
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int64
}

// DefaultParams returns the fixed request parameters for model.
func DefaultParams(model string) Params {
	return Params{Model: model, Temperature: 0.7, TopP: 1.0, MaxTokens: 1024}
}

// Completer produces one non-streamed reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, turns []memory.Turn, p Params) (string, error)
}

// ModelLister lists the model identifiers a backend offers.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Settings selects and configures a backend.
type Settings struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	APIKeyEnv  string
	HTTPClient *http.Client
}

// DefaultModel returns the model used by name when none is configured.
func DefaultModel(name string) string {
	if name == NameAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultGroqModel
}

// NewLister builds the backend named in s for model listing.
func NewLister(s Settings) (ModelLister, error) {
	c, err := New(s)
	if err != nil {
		return nil, err
	}
	l, ok := c.(ModelLister)
	if !ok {
		return nil, fmt.Errorf("%w: %q cannot list models", ErrUnknownProvider, s.Provider)
	}
	return l, nil
}

// New builds the backend named in s.
func New(s Settings) (Completer, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("%s %w", s.APIKeyEnv, ErrMissingCredential)
	}
	switch s.Provider {
	case "", NameGroq:
		return NewGroqClient(s), nil
	case NameAnthropic:
		return NewAnthropicClient(s), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, s.Provider)
	}
}
