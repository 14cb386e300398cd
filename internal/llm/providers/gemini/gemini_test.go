package gemini

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

func captureWire(t *testing.T, req *llm.ChatRequest) openaicompat.WireRequest {
	t.Helper()
	var captured openaicompat.WireRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	p := New("key", server.URL, 5*time.Second, nil)
	events, err := p.StreamChat(context.Background(), req)
	require.NoError(t, err)
	for range events {
	}
	return captured
}

func TestProAlwaysHighEffort(t *testing.T) {
	wire := captureWire(t, &llm.ChatRequest{Model: "gemini-3-pro-preview", Thinking: false})
	assert.Equal(t, "high", wire.ReasoningEffort)
}

func TestFlashTogglesEffort(t *testing.T) {
	wire := captureWire(t, &llm.ChatRequest{Model: "gemini-3-flash-preview", Thinking: true})
	assert.Equal(t, "high", wire.ReasoningEffort)

	wire = captureWire(t, &llm.ChatRequest{Model: "gemini-3-flash-preview", Thinking: false})
	assert.Equal(t, "minimal", wire.ReasoningEffort)
}

func TestCatalogFlags(t *testing.T) {
	p := New("key", "", 0, nil)
	models := p.Models()
	require.Len(t, models, 2)

	byID := map[string]llm.ModelInfo{}
	for _, m := range models {
		byID[m.ModelID] = m
	}
	assert.True(t, byID["gemini-3-pro-preview"].ThinkingLocked)
	assert.False(t, byID["gemini-3-flash-preview"].ThinkingLocked)
	assert.True(t, byID["gemini-3-flash-preview"].SupportsThinking)
}
