package provider

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/advisor-relay/memory"
)

const DefaultAnthropicModel = string(anthropic.ModelClaude3_7SonnetLatest)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient returns a client for s. The SDK's automatic retries are off.
func NewAnthropicClient(s Settings) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(s.HTTPClient))
	}
	c := anthropic.NewClient(opts...)
	return &AnthropicClient{client: &c}
}

// Complete sends the conversation with system turns lifted into the system prompt.
func (a *AnthropicClient) Complete(ctx context.Context, turns []memory.Turn, p Params) (string, error) {
	system, msgs := toAnthropicMessages(turns)
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.Model),
		MaxTokens:   p.MaxTokens,
		Messages:    msgs,
		Temperature: anthropic.Float(p.Temperature),
		TopP:        anthropic.Float(p.TopP),
	}
	if len(system) > 0 {
		params.System = system
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := range msg.Content {
		if msg.Content[i].Type == "text" {
			b.WriteString(msg.Content[i].Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return b.String(), nil
}

// ListModels returns the IDs of the models available to the API key.
func (a *AnthropicClient) ListModels(ctx context.Context) ([]string, error) {
	page, err := a.client.Models.List(ctx, anthropic.ModelListParams{Limit: anthropic.Int(1000)})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func toAnthropicMessages(turns []memory.Turn) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	msgs := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case memory.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: t.Content})
		case memory.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}
	return system, msgs
}

var (
	_ Completer   = (*AnthropicClient)(nil)
	_ ModelLister = (*AnthropicClient)(nil)
)
