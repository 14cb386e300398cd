// Package config loads process configuration from environment variables.
// A .env file, when present, is loaded by the caller via godotenv before
// Load is invoked.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ProviderConfig holds the credentials and endpoint for one provider family.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// Enabled reports whether the provider can be registered at startup.
func (p ProviderConfig) Enabled() bool {
	return p.APIKey != ""
}

type ServerConfig struct {
	Host        string
	Port        string
	CORSOrigins []string
}

type Config struct {
	Server ServerConfig

	// DatabasePath is the sqlite file backing conversation storage.
	DatabasePath string

	DefaultModel     string
	ModelTemperature float64

	// RequestTimeout bounds a single provider call; DebateTimeout bounds a
	// whole debate run.
	RequestTimeout time.Duration
	DebateTimeout  time.Duration

	LogLevel string

	Mistral  ProviderConfig
	Qwen     ProviderConfig
	GLM      ProviderConfig
	MiniMax  ProviderConfig
	DeepSeek ProviderConfig
	OpenAI   ProviderConfig
	Gemini   ProviderConfig
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        getEnv("PORT", "8000"),
			CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"*"}),
		},
		DatabasePath:     getEnv("DATABASE_PATH", "./conversations.db"),
		DefaultModel:     getEnv("DEFAULT_MODEL", "mistral-large-latest"),
		ModelTemperature: getEnvFloat("MODEL_TEMPERATURE", 0.7),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 180*time.Second),
		DebateTimeout:    getEnvDuration("DEBATE_TIMEOUT", 15*time.Minute),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Mistral: ProviderConfig{
			APIKey:  getEnv("MISTRAL_API_KEY", ""),
			BaseURL: getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		},
		Qwen: ProviderConfig{
			APIKey:  getEnv("QWEN_API_KEY", os.Getenv("DASHSCOPE_API_KEY")),
			BaseURL: getEnv("QWEN_BASE_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
		},
		GLM: ProviderConfig{
			APIKey:  getEnv("GLM_API_KEY", os.Getenv("ZHIPUAI_API_KEY")),
			BaseURL: getEnv("GLM_BASE_URL", "https://open.bigmodel.cn/api/paas/v4"),
		},
		MiniMax: ProviderConfig{
			APIKey:  getEnv("MINIMAX_API_KEY", ""),
			BaseURL: getEnv("MINIMAX_BASE_URL", "https://api.minimax.io/v1"),
		},
		DeepSeek: ProviderConfig{
			APIKey:  getEnv("DEEPSEEK_API_KEY", ""),
			BaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		},
		OpenAI: ProviderConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		Gemini: ProviderConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		},
	}
}

// HasProvider reports whether at least one provider key is configured.
func (c *Config) HasProvider() bool {
	for _, p := range []ProviderConfig{c.Mistral, c.Qwen, c.GLM, c.MiniMax, c.DeepSeek, c.OpenAI, c.Gemini} {
		if p.Enabled() {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
