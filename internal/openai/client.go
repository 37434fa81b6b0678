// Package openai implements bench.Completer on the OpenAI chat completions
// API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"craftbench/internal/bench"
)

var (
	// ErrNoToken is returned when no API token is available.
	ErrNoToken = errors.New("OpenAI token not found")

	// ErrTruncated is returned when the reply is cut off even after
	// escalating to a larger context model.
	ErrTruncated = errors.New("ran out of tokens")

	// ErrNoLargerModel is returned when the reply is cut off and the model
	// has no larger context variant.
	ErrNoLargerModel = errors.New("larger context model not found")
)

// largerContext maps a model to its larger context variant.
var largerContext = map[string]string{
	"gpt-3.5-turbo": "gpt-3.5-turbo-16k",
	"gpt-4":         "gpt-4-16k",
}

// maxAttempts bounds escalation to a single retry.
const maxAttempts = 2

// TokenSource supplies the API token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configure a Client.
type Options struct {
	// BaseURL overrides the API endpoint, e.g. for a proxy or a test server.
	BaseURL string
	// DefaultModel is used when a request names no model.
	DefaultModel string
	// OnEscalate is called before retrying with a larger context model.
	OnEscalate func(from, to string)
	HTTPClient *http.Client
	Logger     bench.Logger
}

// Client sends chat completions.
type Client struct {
	tokens TokenSource
	opts   Options
}

var _ bench.Completer = (*Client)(nil)

// NewClient creates a Client. The token is looked up on every call so a
// token entered mid-session is picked up.
func NewClient(tokens TokenSource, opts Options) *Client {
	if opts.DefaultModel == "" {
		opts.DefaultModel = bench.BaseModel
	}
	if opts.Logger == nil {
		opts.Logger = bench.NewNopLogger()
	}
	return &Client{tokens: tokens, opts: opts}
}

// LargerContextModel returns the larger context variant of model.
func LargerContextModel(model string) (string, bool) {
	m, ok := largerContext[model]
	return m, ok
}

// Complete sends req and returns the first choice's content. If the reply
// was cut off it retries once with the larger context model.
func (c *Client) Complete(ctx context.Context, req bench.CompletionRequest) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("reading api token: %w", err)
	}
	if token == "" {
		return "", ErrNoToken
	}

	cfg := goopenai.DefaultConfig(token)
	if c.opts.BaseURL != "" {
		cfg.BaseURL = c.opts.BaseURL
	}
	if c.opts.HTTPClient != nil {
		cfg.HTTPClient = c.opts.HTTPClient
	}
	api := goopenai.NewClientWithConfig(cfg)

	var messages []goopenai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Content,
	})

	model := req.Model
	if model == "" {
		model = c.opts.DefaultModel
	}

	for attempt := 1; ; attempt++ {
		c.opts.Logger.Info("requesting completion", "model", model, "attempt", attempt)

		resp, err := api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
			Model:    model,
			Messages: messages,
		})
		if err != nil {
			return "", fmt.Errorf("chat completion with %s: %w", model, err)
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}

		choice := resp.Choices[0]
		if choice.FinishReason != goopenai.FinishReasonLength {
			return choice.Message.Content, nil
		}

		if attempt >= maxAttempts {
			return "", ErrTruncated
		}
		larger, ok := LargerContextModel(model)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNoLargerModel, model)
		}
		c.opts.Logger.Info("ran out of tokens, escalating", "from", model, "to", larger)
		if c.opts.OnEscalate != nil {
			c.opts.OnEscalate(model, larger)
		}
		model = larger
	}
}
