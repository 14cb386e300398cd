// Package openai adapts the OpenAI chat completions API.
package openai

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/openaicompat"
)

const defaultBaseURL = "https://api.openai.com/v1"

var catalog = []llm.ModelInfo{
	{
		Provider:         "openai",
		ProviderName:     "OpenAI",
		ModelID:          "gpt-5.2",
		ModelName:        "GPT-5.2",
		Description:      "Flagship reasoning model",
		SupportsJSONMode: true,
	},
	{
		Provider:         "openai",
		ProviderName:     "OpenAI",
		ModelID:          "gpt-5.2-chat",
		ModelName:        "GPT-5.2 Chat",
		Description:      "Conversational variant tuned for chat",
		SupportsJSONMode: true,
	},
}

// New builds the OpenAI provider.
func New(apiKey, baseURL string, timeout time.Duration, logger *logrus.Logger) *openaicompat.Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaicompat.New(openaicompat.Options{
		Name:        "openai",
		DisplayName: "OpenAI",
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Models:      catalog,
		Timeout:     timeout,
		Logger:      logger,
	})
}
