package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-search/internal/domain"
)

// scriptedGenerator replays canned reasoning responses; StreamChat splits
// the final scripted entry into word fragments.
type scriptedGenerator struct {
	script []string
	turn   int
}

func (g *scriptedGenerator) Chat(_ context.Context, _ []domain.Message, _ domain.GenOptions) (string, error) {
	reply := g.script[g.turn%len(g.script)]
	g.turn++
	return reply, nil
}

func (g *scriptedGenerator) StreamChat(_ context.Context, _ []domain.Message, _ domain.GenOptions) (<-chan domain.Fragment, error) {
	reply := g.script[(g.turn-1)%len(g.script)]
	ch := make(chan domain.Fragment)
	go func() {
		defer close(ch)
		for _, part := range []string{reply[:len(reply)/2], reply[len(reply)/2:]} {
			ch <- domain.Fragment{Delta: part}
		}
	}()
	return ch, nil
}

func echoTool(name string, calls *[]string) Tool {
	return Tool{
		Name:        name,
		Description: "test tool",
		Run: func(_ context.Context, input json.RawMessage) string {
			*calls = append(*calls, string(input))
			return "observation for " + name
		},
	}
}

func collect(t *testing.T, events <-chan domain.Event) []domain.Event {
	t.Helper()
	var out []domain.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("event stream did not terminate")
		}
	}
}

func TestAsk_ToolCallThenStreamedAnswer(t *testing.T) {
	var calls []string
	gen := &scriptedGenerator{script: []string{
		"I should search.\n```json\n{\"tool\": \"search_candidates\", \"input\": {\"query\": \"go developers\"}}\n```",
		"Ada Lovelace is the strongest match.",
	}}
	a := New(gen, []Tool{echoTool("search_candidates", &calls)}, Config{})

	events := collect(t, a.Ask(context.Background(), "who knows go?"))
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"query": "go developers"}`, calls[0])

	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventMetadata, events[0].Type)

	var answer string
	for _, ev := range events {
		if ev.Type == domain.EventContent {
			answer += ev.Text()
		}
	}
	assert.Equal(t, "Ada Lovelace is the strongest match.", answer)
	assert.Equal(t, domain.EventDone, events[len(events)-1].Type)
}

func TestAsk_NoToolCallStreamsDirectly(t *testing.T) {
	gen := &scriptedGenerator{script: []string{"Plain answer without any tool."}}
	a := New(gen, nil, Config{})

	events := collect(t, a.Ask(context.Background(), "hello"))
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventContent, events[0].Type)
	assert.Equal(t, domain.EventDone, events[len(events)-1].Type)
}

func TestAsk_MaxTurnsYieldsErrorEvent(t *testing.T) {
	var calls []string
	gen := &scriptedGenerator{script: []string{
		"```json\n{\"tool\": \"loop_tool\", \"input\": {}}\n```",
	}}
	a := New(gen, []Tool{echoTool("loop_tool", &calls)}, Config{MaxTurns: 3, MaxToolCalls: 10})

	events := collect(t, a.Ask(context.Background(), "loop forever"))
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, domain.EventError, last.Type)
	assert.Contains(t, last.Text(), "3 turns")
	assert.Len(t, calls, 3)
}

func TestAsk_MaxToolCallsYieldsErrorEvent(t *testing.T) {
	var calls []string
	gen := &scriptedGenerator{script: []string{
		"```json\n{\"tool\": \"loop_tool\", \"input\": {}}\n```",
	}}
	a := New(gen, []Tool{echoTool("loop_tool", &calls)}, Config{MaxTurns: 10, MaxToolCalls: 2})

	events := collect(t, a.Ask(context.Background(), "loop forever"))
	last := events[len(events)-1]
	assert.Equal(t, domain.EventError, last.Type)
	assert.Contains(t, last.Text(), "maximum tool calls")
	assert.Len(t, calls, 2)
}

func TestAsk_UnknownToolBecomesObservation(t *testing.T) {
	gen := &scriptedGenerator{script: []string{
		"```json\n{\"tool\": \"nonexistent\", \"input\": {}}\n```",
		"Recovered with a final answer.",
	}}
	a := New(gen, nil, Config{})

	events := collect(t, a.Ask(context.Background(), "try a bad tool"))
	assert.Equal(t, domain.EventDone, events[len(events)-1].Type)
}

func TestParseToolCall(t *testing.T) {
	call, ok := parseToolCall("thinking...\n```json\n{\"tool\": \"t\", \"input\": {\"a\": 1}}\n```\ntrailing")
	require.True(t, ok)
	assert.Equal(t, "t", call.Tool)
	assert.JSONEq(t, `{"a": 1}`, string(call.Input))

	_, ok = parseToolCall("no tool here")
	assert.False(t, ok)

	_, ok = parseToolCall("```json\nnot json\n```")
	assert.False(t, ok)
}
