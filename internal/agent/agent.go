package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/phuslu/log"

	"candidate-search/internal/domain"
)

const systemPromptBase = `You are a recruiting assistant with access to a database of anonymized candidate CVs.

Answer the user's question. When you need information, call a tool by replying with ONLY a fenced JSON block of this exact shape:

` + "```json" + `
{"tool": "<tool name>", "input": {<tool arguments>}}
` + "```" + `

After each tool call you will receive the tool's output as an observation. You may call tools several times. When you have enough information, reply with your final answer as plain text without any JSON block.

Available tools:
`

// Config bounds the agent conversation loop.
type Config struct {
	MaxTurns     int
	MaxToolCalls int
	Timeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxTurns:     10,
		MaxToolCalls: 15,
		Timeout:      5 * time.Minute,
	}
}

// Agent runs a tool-augmented reasoning loop over a Generator.
type Agent struct {
	generator domain.Generator
	tools     []Tool
	config    Config
}

func New(generator domain.Generator, tools []Tool, cfg Config) *Agent {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 10
	}
	if cfg.MaxToolCalls <= 0 {
		cfg.MaxToolCalls = 15
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Agent{generator: generator, tools: tools, config: cfg}
}

type toolCall struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

var toolBlockRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// Ask answers a query through the reasoning loop and streams the result.
// The returned channel carries metadata events for each tool invocation,
// content fragments of the final answer, and exactly one terminal done or
// error event before closing. Cancelling ctx stops the loop and the
// upstream generation call.
func (a *Agent) Ask(ctx context.Context, query string) <-chan domain.Event {
	events := make(chan domain.Event)
	go func() {
		defer close(events)

		ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()

		messages := []domain.Message{
			{Role: "system", Content: a.systemPrompt()},
			{Role: "user", Content: query},
		}

		toolCalls := 0
		for turn := 1; turn <= a.config.MaxTurns; turn++ {
			if ctx.Err() != nil {
				emit(ctx, events, domain.ErrorEvent("request cancelled"))
				return
			}

			response, err := a.generator.Chat(ctx, messages, domain.GenOptions{Temperature: 0.1})
			if err != nil {
				emit(ctx, events, domain.ErrorEvent(fmt.Sprintf("generation failed on turn %d: %v", turn, err)))
				return
			}

			call, ok := parseToolCall(response)
			if !ok {
				a.streamFinal(ctx, events, messages)
				return
			}

			if toolCalls >= a.config.MaxToolCalls {
				emit(ctx, events, domain.ErrorEvent(fmt.Sprintf("exceeded maximum tool calls (%d)", a.config.MaxToolCalls)))
				return
			}
			toolCalls++

			tool, found := a.lookup(call.Tool)
			observation := ""
			if !found {
				observation = fmt.Sprintf("Error: unknown tool '%s'.", call.Tool)
			} else {
				log.Debug().Str("tool", call.Tool).Int("turn", turn).Msg("agent tool call")
				emit(ctx, events, domain.MetadataEvent(map[string]any{"tool": call.Tool, "turn": turn}))
				observation = tool.Run(ctx, call.Input)
			}

			messages = append(messages,
				domain.Message{Role: "assistant", Content: response},
				domain.Message{Role: "user", Content: fmt.Sprintf("Tool '%s' returned:\n\n%s", call.Tool, observation)},
			)
		}

		emit(ctx, events, domain.ErrorEvent(fmt.Sprintf("no final answer within %d turns", a.config.MaxTurns)))
	}()
	return events
}

// streamFinal regenerates the answer as a stream and relays fragments,
// then terminates the event stream.
func (a *Agent) streamFinal(ctx context.Context, events chan<- domain.Event, messages []domain.Message) {
	fragments, err := a.generator.StreamChat(ctx, messages, domain.GenOptions{Temperature: 0.1})
	if err != nil {
		emit(ctx, events, domain.ErrorEvent(fmt.Sprintf("streaming failed: %v", err)))
		return
	}
	for frag := range fragments {
		if frag.Err != nil {
			emit(ctx, events, domain.ErrorEvent(frag.Err.Error()))
			return
		}
		if !emit(ctx, events, domain.ContentEvent(frag.Delta)) {
			return
		}
	}
	emit(ctx, events, domain.DoneEvent())
}

func (a *Agent) systemPrompt() string {
	var sb strings.Builder
	sb.WriteString(systemPromptBase)
	for _, t := range a.tools {
		fmt.Fprintf(&sb, "\n- %s: %s", t.Name, t.Description)
	}
	return sb.String()
}

func (a *Agent) lookup(name string) (Tool, bool) {
	for _, t := range a.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// parseToolCall extracts the first fenced JSON tool block from a
// reasoning response. A response without a parseable block is the final
// answer.
func parseToolCall(response string) (toolCall, bool) {
	matches := toolBlockRe.FindStringSubmatch(response)
	if len(matches) < 2 {
		return toolCall{}, false
	}
	var call toolCall
	if err := json.Unmarshal([]byte(matches[1]), &call); err != nil || call.Tool == "" {
		return toolCall{}, false
	}
	return call, true
}

func emit(ctx context.Context, events chan<- domain.Event, ev domain.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
