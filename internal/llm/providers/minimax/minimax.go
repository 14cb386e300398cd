// Package minimax adapts the MiniMax OpenAI-compatible API.
package minimax

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/openaicompat"
)

const defaultBaseURL = "https://api.minimax.io/v1"

var catalog = []llm.ModelInfo{
	{
		Provider:         "minimax",
		ProviderName:     "MiniMax",
		ModelID:          "MiniMax-M2.1",
		ModelName:        "MiniMax M2.1",
		Description:      "Reasoning model with interleaved thinking",
		SupportsThinking: true,
		ThinkingLocked:   true,
		SupportsJSONMode: true,
	},
}

// New builds the MiniMax provider.
func New(apiKey, baseURL string, timeout time.Duration, logger *logrus.Logger) *openaicompat.Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaicompat.New(openaicompat.Options{
		Name:        "minimax",
		DisplayName: "MiniMax",
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Models:      catalog,
		Timeout:     timeout,
		Logger:      logger,
	})
}
