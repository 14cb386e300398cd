// Package glm adapts Zhipu AI's GLM OpenAI-compatible API.
package glm

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/openaicompat"
)

const defaultBaseURL = "https://open.bigmodel.cn/api/paas/v4"

var catalog = []llm.ModelInfo{
	{
		Provider:         "glm",
		ProviderName:     "GLM",
		ModelID:          "glm-4-plus",
		ModelName:        "GLM-4 Plus",
		Description:      "Most capable GLM model",
		SupportsThinking: true,
		SupportsJSONMode: true,
	},
	{
		Provider:         "glm",
		ProviderName:     "GLM",
		ModelID:          "glm-4-air",
		ModelName:        "GLM-4 Air",
		Description:      "Cost-effective general model",
		SupportsThinking: true,
		SupportsJSONMode: true,
	},
	{
		Provider:         "glm",
		ProviderName:     "GLM",
		ModelID:          "glm-4-airx",
		ModelName:        "GLM-4 AirX",
		Description:      "Low-latency variant of Air",
		SupportsJSONMode: true,
	},
	{
		Provider:         "glm",
		ProviderName:     "GLM",
		ModelID:          "glm-4-flash",
		ModelName:        "GLM-4 Flash",
		Description:      "Fastest GLM model",
		SupportsJSONMode: true,
	},
}

// New builds the GLM provider.
func New(apiKey, baseURL string, timeout time.Duration, logger *logrus.Logger) *openaicompat.Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaicompat.New(openaicompat.Options{
		Name:        "glm",
		DisplayName: "GLM",
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Models:      catalog,
		Timeout:     timeout,
		Logger:      logger,
		Mutate:      mutate,
	})
}

// mutate translates the thinking toggle into GLM's {"type": ...} object.
func mutate(req *llm.ChatRequest, wire *openaicompat.WireRequest) {
	typ := "disabled"
	if req.Thinking {
		typ = "enabled"
	}
	wire.Thinking = &openaicompat.ThinkingParam{Type: typ}
}
