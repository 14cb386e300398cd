// Package providers wires configured vendor adapters into a registry.
package providers

import (
	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/config"
	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/deepseek"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/gemini"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/glm"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/minimax"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/mistral"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/openai"
	"github.com/TanyuSylvain/unify-llm/internal/llm/providers/qwen"
)

// BuildRegistry registers one adapter per provider whose API key is
// configured. Providers without keys are skipped with a log line so the
// operator can tell why a model is missing from /models.
func BuildRegistry(cfg *config.Config, logger *logrus.Logger) *llm.Registry {
	registry := llm.NewRegistry()

	register := func(name string, pc config.ProviderConfig, build func() llm.Provider) {
		if !pc.Enabled() {
			logger.WithField("provider", name).Debug("Provider not configured, skipping")
			return
		}
		p := build()
		registry.Register(p)
		logger.WithFields(logrus.Fields{
			"provider": name,
			"models":   len(p.Models()),
		}).Info("Provider registered")
	}

	register("mistral", cfg.Mistral, func() llm.Provider {
		return mistral.New(cfg.Mistral.APIKey, cfg.Mistral.BaseURL, cfg.RequestTimeout, logger)
	})
	register("qwen", cfg.Qwen, func() llm.Provider {
		return qwen.New(cfg.Qwen.APIKey, cfg.Qwen.BaseURL, cfg.RequestTimeout, logger)
	})
	register("glm", cfg.GLM, func() llm.Provider {
		return glm.New(cfg.GLM.APIKey, cfg.GLM.BaseURL, cfg.RequestTimeout, logger)
	})
	register("minimax", cfg.MiniMax, func() llm.Provider {
		return minimax.New(cfg.MiniMax.APIKey, cfg.MiniMax.BaseURL, cfg.RequestTimeout, logger)
	})
	register("deepseek", cfg.DeepSeek, func() llm.Provider {
		return deepseek.New(cfg.DeepSeek.APIKey, cfg.DeepSeek.BaseURL, cfg.RequestTimeout, logger)
	})
	register("openai", cfg.OpenAI, func() llm.Provider {
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.RequestTimeout, logger)
	})
	register("gemini", cfg.Gemini, func() llm.Provider {
		return gemini.New(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.RequestTimeout, logger)
	})

	return registry
}
