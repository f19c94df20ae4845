package provider

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/petasbytes/advisor-relay/memory"
)

const (
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1/"
)

// GroqClient calls Groq's OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	client *openai.Client
}

// NewGroqClient returns a client for s. The SDK's automatic retries are off.
func NewGroqClient(s Settings) *GroqClient {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if s.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(s.HTTPClient))
	}
	c := openai.NewClient(opts...)
	return &GroqClient{client: &c}
}

// Complete sends the whole conversation and returns the first choice's text.
func (g *GroqClient) Complete(ctx context.Context, turns []memory.Turn, p Params) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.Model),
		Messages:    toOpenAIMessages(turns),
		Temperature: openai.Float(p.Temperature),
		TopP:        openai.Float(p.TopP),
		MaxTokens:   openai.Int(p.MaxTokens),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// ListModels returns the IDs of the models available to the API key.
func (g *GroqClient) ListModels(ctx context.Context) ([]string, error) {
	page, err := g.client.Models.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func toOpenAIMessages(turns []memory.Turn) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case memory.RoleSystem:
			out = append(out, openai.SystemMessage(t.Content))
		case memory.RoleAssistant:
			out = append(out, openai.AssistantMessage(t.Content))
		default:
			out = append(out, openai.UserMessage(t.Content))
		}
	}
	return out
}

var (
	_ Completer   = (*GroqClient)(nil)
	_ ModelLister = (*GroqClient)(nil)
)
