package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/phuslu/log"

	"candidate-search/internal/domain"
)

// Client is an OpenAI-compatible chat completions client.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
	// streamClient has no transport-level timeout; streamed responses are
	// bounded by the per-call context deadline instead.
	streamClient *http.Client
}

// Config configures the OpenAI-compatible chat client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a new chat completions client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       key,
		model:        cfg.Model,
		timeout:      t,
		client:       &http.Client{Timeout: t},
		streamClient: &http.Client{},
	}, nil
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

// Chat sends the conversation and returns the assistant response.
func (c *Client) Chat(ctx context.Context, messages []domain.Message, opts domain.GenOptions) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("messages cannot be empty")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, c.client, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return out.Choices[0].Message.Content, nil
}

// StreamChat sends the conversation with stream enabled and relays text
// deltas on the returned channel. The channel is closed when the stream
// finishes; a Fragment with Err set reports an upstream failure. Closing
// the context stops the HTTP stream.
func (c *Client) StreamChat(ctx context.Context, messages []domain.Message, opts domain.GenOptions) (<-chan domain.Fragment, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	// The whole stream is bounded by a deadline several times the
	// single-call timeout; deltas arrive incrementally.
	streamCtx, cancel := context.WithTimeout(ctx, 4*c.timeout)

	resp, err := c.post(streamCtx, c.streamClient, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	ch := make(chan domain.Fragment)
	go func() {
		defer close(ch)
		defer cancel()
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				return
			}
			var chunk struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
				} `json:"choices"`
			}
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				log.Warn().Err(err).Msg("skipping malformed stream frame")
				continue
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case ch <- domain.Fragment{Delta: chunk.Choices[0].Delta.Content}:
			case <-streamCtx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && streamCtx.Err() == nil {
			select {
			case ch <- domain.Fragment{Err: &domain.UpstreamError{Op: "openai stream", Err: err}}:
			case <-streamCtx.Done():
			}
		}
	}()
	return ch, nil
}

func (c *Client) post(ctx context.Context, client *http.Client, body chatRequest) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "openai chat", Err: err}
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &domain.UpstreamError{Op: "openai chat", Err: fmt.Errorf("status %s", resp.Status)}
	}
	return resp, nil
}
