package translate

import (
	"fmt"
	"time"
)

// Engine names.
const (
	EngineGemini = "gemini"
	EngineOpenAI = "openai"
)

// EngineConfig selects and configures a generator.
type EngineConfig struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Timeout       time.Duration
}

// NewGenerator builds the configured engine. It returns a nil Generator
// when the selected engine has no credential, leaving the gateway
// unconfigured.
func NewGenerator(cfg EngineConfig) (Generator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	switch cfg.Provider {
	case "", EngineGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		return NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.Timeout), nil
	case EngineOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, nil
		}
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown translation provider %q", cfg.Provider)
	}
}
