package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-search/internal/domain"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("TEST_LLM_KEY", "secret")
	c, err := NewClient(Config{
		BaseURL:   baseURL,
		APIKeyEnv: "TEST_LLM_KEY",
		Model:     "test-model",
		Timeout:   2 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func writeFrame(w http.ResponseWriter, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	w.(http.Flusher).Flush()
}

// collect drains the fragment channel, returning the joined deltas and
// the first error fragment, if any.
func collect(t *testing.T, ch <-chan domain.Fragment) (string, error) {
	t.Helper()
	var text string
	var err error
	timeout := time.After(5 * time.Second)
	for {
		select {
		case frag, ok := <-ch:
			if !ok {
				return text, err
			}
			if frag.Err != nil && err == nil {
				err = frag.Err
			}
			text += frag.Delta
		case <-timeout:
			t.Fatal("stream did not finish")
		}
	}
}

func TestChat_ReturnsAssistantContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"the answer"}}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.Chat(context.Background(), []domain.Message{{Role: "user", Content: "q"}}, domain.GenOptions{})
	require.NoError(t, err)
	assert.Equal(t, "the answer", out)
}

func TestChat_UpstreamStatusIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Chat(context.Background(), []domain.Message{{Role: "user", Content: "q"}}, domain.GenOptions{})
	var uerr *domain.UpstreamError
	require.ErrorAs(t, err, &uerr)
}

func TestStreamChat_RelaysDeltasAndStopsAtDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFrame(w, `{"choices":[{"delta":{"content":"Hel"}}]}`)
		writeFrame(w, `{not json`)
		writeFrame(w, `{"choices":[{"delta":{"content":"lo"}}]}`)
		writeFrame(w, `[DONE]`)
		writeFrame(w, `{"choices":[{"delta":{"content":"after done"}}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ch, err := c.StreamChat(context.Background(), []domain.Message{{Role: "user", Content: "q"}}, domain.GenOptions{})
	require.NoError(t, err)

	text, streamErr := collect(t, ch)
	require.NoError(t, streamErr)
	assert.Equal(t, "Hello", text)
}

func TestStreamChat_AbortMidStreamYieldsErrorFragment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFrame(w, `{"choices":[{"delta":{"content":"partial"}}]}`)
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ch, err := c.StreamChat(context.Background(), []domain.Message{{Role: "user", Content: "q"}}, domain.GenOptions{})
	require.NoError(t, err)

	text, streamErr := collect(t, ch)
	assert.Equal(t, "partial", text)
	var uerr *domain.UpstreamError
	require.ErrorAs(t, streamErr, &uerr)
	assert.Equal(t, "openai stream", uerr.Op)
}

func TestStreamChat_EmptyMessagesRejected(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	_, err := c.StreamChat(context.Background(), nil, domain.GenOptions{})
	require.Error(t, err)
	assert.False(t, errors.As(err, new(*domain.UpstreamError)))
}
