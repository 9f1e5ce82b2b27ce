package anthropic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"candidate-search/internal/domain"
)

// Client generates text through the Anthropic Messages API.
type Client struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// Config configures the Anthropic client.
type Config struct {
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &Client{
		client:  anthropic.NewClient(option.WithAPIKey(key)),
		model:   model,
		timeout: t,
	}, nil
}

// Chat sends the conversation and returns the concatenated text blocks of
// the assistant response.
func (c *Client) Chat(ctx context.Context, messages []domain.Message, opts domain.GenOptions) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("messages cannot be empty")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.client.Messages.New(ctx, c.params(messages, opts))
	if err != nil {
		return "", &domain.UpstreamError{Op: "anthropic chat", Err: err}
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// StreamChat relays text deltas from a streaming Messages request. The
// channel closes when the stream ends; failures are delivered as a
// Fragment with Err set.
func (c *Client) StreamChat(ctx context.Context, messages []domain.Message, opts domain.GenOptions) (<-chan domain.Fragment, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	streamCtx, cancel := context.WithTimeout(ctx, 4*c.timeout)
	stream := c.client.Messages.NewStreaming(streamCtx, c.params(messages, opts))

	ch := make(chan domain.Fragment)
	go func() {
		defer close(ch)
		defer cancel()
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			text, ok := delta.Delta.AsAny().(anthropic.TextDelta)
			if !ok || text.Text == "" {
				continue
			}
			select {
			case ch <- domain.Fragment{Delta: text.Text}:
			case <-streamCtx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			select {
			case ch <- domain.Fragment{Err: &domain.UpstreamError{Op: "anthropic stream", Err: err}}:
			case <-streamCtx.Done():
			}
		}
	}()
	return ch, nil
}

func (c *Client) params(messages []domain.Message, opts domain.GenOptions) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	converted := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  converted,
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if len(system) > 0 {
		params.System = system
	}
	return params
}
