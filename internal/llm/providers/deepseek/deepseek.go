// Package deepseek adapts the DeepSeek chat completions API.
package deepseek

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/openaicompat"
)

const defaultBaseURL = "https://api.deepseek.com"

var catalog = []llm.ModelInfo{
	{
		Provider:         "deepseek",
		ProviderName:     "DeepSeek",
		ModelID:          "deepseek-chat",
		ModelName:        "DeepSeek Chat",
		Description:      "General-purpose chat model",
		SupportsJSONMode: true,
	},
	{
		Provider:         "deepseek",
		ProviderName:     "DeepSeek",
		ModelID:          "deepseek-reasoner",
		ModelName:        "DeepSeek Reasoner",
		Description:      "Reasoning model with always-on chain of thought",
		SupportsThinking: true,
		ThinkingLocked:   true,
	},
}

// New builds the DeepSeek provider. baseURL may be empty to use the
// public endpoint.
func New(apiKey, baseURL string, timeout time.Duration, logger *logrus.Logger) *openaicompat.Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaicompat.New(openaicompat.Options{
		Name:        "deepseek",
		DisplayName: "DeepSeek",
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Models:      catalog,
		Timeout:     timeout,
		Logger:      logger,
		Mutate:      mutate,
	})
}

// mutate strips parameters deepseek-reasoner rejects. The reasoner ignores
// temperature and always streams reasoning_content; the gateway never sends
// a thinking toggle for it.
func mutate(req *llm.ChatRequest, wire *openaicompat.WireRequest) {
	if req.Model == "deepseek-reasoner" {
		wire.Temperature = nil
		wire.ResponseFmt = nil
	}
}
