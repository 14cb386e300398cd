// Package gemini adapts Google's Gemini models through their
// OpenAI-compatible endpoint.
package gemini

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/openaicompat"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

var catalog = []llm.ModelInfo{
	{
		Provider:         "gemini",
		ProviderName:     "Gemini",
		ModelID:          "gemini-3-pro-preview",
		ModelName:        "Gemini 3 Pro",
		Description:      "Most capable Gemini model, always reasons at high effort",
		SupportsThinking: true,
		ThinkingLocked:   true,
		SupportsJSONMode: true,
	},
	{
		Provider:         "gemini",
		ProviderName:     "Gemini",
		ModelID:          "gemini-3-flash-preview",
		ModelName:        "Gemini 3 Flash",
		Description:      "Fast Gemini model with adjustable reasoning effort",
		SupportsThinking: true,
		SupportsJSONMode: true,
	},
}

// New builds the Gemini provider.
func New(apiKey, baseURL string, timeout time.Duration, logger *logrus.Logger) *openaicompat.Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaicompat.New(openaicompat.Options{
		Name:        "gemini",
		DisplayName: "Gemini",
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Models:      catalog,
		Timeout:     timeout,
		Logger:      logger,
		Mutate:      mutate,
	})
}

// mutate maps the thinking toggle onto reasoning_effort. Pro always runs
// at high effort; Flash drops to minimal when thinking is off.
func mutate(req *llm.ChatRequest, wire *openaicompat.WireRequest) {
	switch req.Model {
	case "gemini-3-pro-preview":
		wire.ReasoningEffort = "high"
	case "gemini-3-flash-preview":
		if req.Thinking {
			wire.ReasoningEffort = "high"
		} else {
			wire.ReasoningEffort = "minimal"
		}
	}
}
