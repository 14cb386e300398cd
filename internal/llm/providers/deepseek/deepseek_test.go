package deepseek

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
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/openaicompat"
)

func TestCatalog(t *testing.T) {
	p := New("key", "", 0, nil)
	assert.Equal(t, "deepseek", p.Name())

	models := p.Models()
	require.Len(t, models, 2)

	byID := map[string]llm.ModelInfo{}
	for _, m := range models {
		byID[m.ModelID] = m
	}
	assert.False(t, byID["deepseek-chat"].SupportsThinking)
	assert.True(t, byID["deepseek-chat"].SupportsJSONMode)
	assert.True(t, byID["deepseek-reasoner"].SupportsThinking)
	assert.True(t, byID["deepseek-reasoner"].ThinkingLocked)
}

func TestReasonerDropsTemperature(t *testing.T) {
	var captured openaicompat.WireRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	p := New("key", server.URL, 5*time.Second, nil)
	events, err := p.StreamChat(context.Background(), &llm.ChatRequest{
		Model:       "deepseek-reasoner",
		Temperature: 0.7,
		Messages:    []llm.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	for range events {
	}

	assert.Nil(t, captured.Temperature)
}

func TestChatKeepsTemperature(t *testing.T) {
	var captured openaicompat.WireRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	p := New("key", server.URL, 5*time.Second, nil)
	events, err := p.StreamChat(context.Background(), &llm.ChatRequest{
		Model:       "deepseek-chat",
		Temperature: 0.7,
	})
	require.NoError(t, err)
	for range events {
	}

	require.NotNil(t, captured.Temperature)
	assert.InDelta(t, 0.7, *captured.Temperature, 1e-9)
}
