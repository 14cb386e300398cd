// Package mistral adapts the Mistral AI chat completions API.
package mistral

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/openaicompat"
)

const defaultBaseURL = "https://api.mistral.ai/v1"

var catalog = []llm.ModelInfo{
	{
		Provider:         "mistral",
		ProviderName:     "Mistral AI",
		ModelID:          "mistral-large-latest",
		ModelName:        "Mistral Large",
		Description:      "Flagship model for complex tasks",
		SupportsJSONMode: true,
	},
	{
		Provider:         "mistral",
		ProviderName:     "Mistral AI",
		ModelID:          "mistral-medium-latest",
		ModelName:        "Mistral Medium",
		Description:      "Balanced quality and latency",
		SupportsJSONMode: true,
	},
	{
		Provider:         "mistral",
		ProviderName:     "Mistral AI",
		ModelID:          "mistral-small-latest",
		ModelName:        "Mistral Small",
		Description:      "Fast model for lightweight tasks",
		SupportsJSONMode: true,
	},
}

// New builds the Mistral provider.
func New(apiKey, baseURL string, timeout time.Duration, logger *logrus.Logger) *openaicompat.Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaicompat.New(openaicompat.Options{
		Name:        "mistral",
		DisplayName: "Mistral AI",
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Models:      catalog,
		Timeout:     timeout,
		Logger:      logger,
	})
}
