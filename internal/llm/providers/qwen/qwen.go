// Package qwen adapts Alibaba's DashScope OpenAI-compatible API.
package qwen

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/openaicompat"
)

const defaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

var catalog = []llm.ModelInfo{
	{
		Provider:         "qwen",
		ProviderName:     "Qwen",
		ModelID:          "qwen-max",
		ModelName:        "Qwen Max",
		Description:      "Most capable Qwen model",
		SupportsThinking: true,
		SupportsJSONMode: true,
	},
	{
		Provider:         "qwen",
		ProviderName:     "Qwen",
		ModelID:          "qwen-plus",
		ModelName:        "Qwen Plus",
		Description:      "Balanced capability and cost",
		SupportsThinking: true,
		SupportsJSONMode: true,
	},
	{
		Provider:         "qwen",
		ProviderName:     "Qwen",
		ModelID:          "qwen-turbo",
		ModelName:        "Qwen Turbo",
		Description:      "Fast model for simple tasks",
		SupportsThinking: true,
		SupportsJSONMode: true,
	},
	{
		Provider:         "qwen",
		ProviderName:     "Qwen",
		ModelID:          "qwen-long",
		ModelName:        "Qwen Long",
		Description:      "Long-context document model",
		SupportsJSONMode: true,
	},
}

// New builds the Qwen provider.
func New(apiKey, baseURL string, timeout time.Duration, logger *logrus.Logger) *openaicompat.Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaicompat.New(openaicompat.Options{
		Name:        "qwen",
		DisplayName: "Qwen",
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Models:      catalog,
		Timeout:     timeout,
		Logger:      logger,
		Mutate:      mutate,
	})
}

// mutate sets DashScope's enable_thinking flag explicitly. Some Qwen
// models default it on, so the toggle is always sent.
func mutate(req *llm.ChatRequest, wire *openaicompat.WireRequest) {
	enabled := req.Thinking
	wire.EnableThinking = &enabled
}
