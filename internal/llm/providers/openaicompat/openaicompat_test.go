package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
)

func newTestClient(url string, mutate Mutator) *Client {
	return New(Options{
		Name:        "testvendor",
		DisplayName: "Test Vendor",
		APIKey:      "test-key",
		BaseURL:     url,
		Mutate:      mutate,
		Timeout:     5 * time.Second,
	})
}

func collect(t *testing.T, events <-chan llm.StreamEvent) []llm.StreamEvent {
	t.Helper()
	var out []llm.StreamEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestStreamChatText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var wire WireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wire))
		assert.True(t, wire.Stream)
		assert.Equal(t, "test-model", wire.Model)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"Hello"}}]}` + "\n\n"))
		w.Write([]byte(`data: {"choices":[{"delta":{"content":", world"}}]}` + "\n\n"))
		w.Write([]byte(`data: {"choices":[],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}` + "\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	events, err := client.StreamChat(context.Background(), &llm.ChatRequest{
		Model:    "test-model",
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 3)
	assert.Equal(t, llm.StreamText, got[0].Type)
	assert.Equal(t, "Hello", got[0].Text)
	assert.Equal(t, ", world", got[1].Text)
	assert.Equal(t, llm.StreamEnd, got[2].Type)
	require.NotNil(t, got[2].Usage)
	assert.Equal(t, 5, got[2].Usage.TotalTokens)
}

func TestStreamChatThinking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`data: {"choices":[{"delta":{"reasoning_content":"pondering"}}]}` + "\n\n"))
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"42"}}]}` + "\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	events, err := client.StreamChat(context.Background(), &llm.ChatRequest{Model: "m"})
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 3)
	assert.Equal(t, llm.StreamThinking, got[0].Type)
	assert.Equal(t, "pondering", got[0].Text)
	assert.Equal(t, llm.StreamText, got[1].Type)
}

func TestStreamChatAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad api key"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	_, err := client.StreamChat(context.Background(), &llm.ChatRequest{Model: "m"})
	require.Error(t, err)

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ErrAuth, perr.Kind)
	assert.Equal(t, 401, perr.Status)
	assert.Contains(t, perr.Message, "bad api key")
}

func TestStreamChatRateLimitNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	_, err := client.StreamChat(context.Background(), &llm.ChatRequest{Model: "m"})
	require.Error(t, err)

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ErrRateLimit, perr.Kind)
	assert.Equal(t, 1, calls)
}

func TestStreamChatEOFWithoutDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"partial"}}]}` + "\n\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	events, err := client.StreamChat(context.Background(), &llm.ChatRequest{Model: "m"})
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 2)
	assert.Equal(t, "partial", got[0].Text)
	assert.Equal(t, llm.StreamEnd, got[1].Type)
}

func TestMutatorAppliesVendorQuirks(t *testing.T) {
	var captured WireRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, func(req *llm.ChatRequest, wire *WireRequest) {
		enabled := req.Thinking
		wire.EnableThinking = &enabled
		wire.Temperature = nil
	})
	events, err := client.StreamChat(context.Background(), &llm.ChatRequest{
		Model:       "m",
		Temperature: 0.9,
		Thinking:    true,
	})
	require.NoError(t, err)
	collect(t, events)

	require.NotNil(t, captured.EnableThinking)
	assert.True(t, *captured.EnableThinking)
	assert.Nil(t, captured.Temperature)
}

func TestStreamChatJSONMode(t *testing.T) {
	var captured WireRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	events, err := client.StreamChat(context.Background(), &llm.ChatRequest{Model: "m", JSONMode: true})
	require.NoError(t, err)
	collect(t, events)

	require.NotNil(t, captured.ResponseFmt)
	assert.Equal(t, "json_object", captured.ResponseFmt.Type)
}
