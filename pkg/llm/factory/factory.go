package factory

import (
	"fmt"
	"strings"
	"time"

	"voice-assistant-be/pkg/llm"
	"voice-assistant-be/pkg/llm/huggingface"
	"voice-assistant-be/pkg/llm/ollama"
)

const (
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"
)

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Timeout), nil
	case ProviderHuggingFace:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("huggingface provider needs an api key")
		}
		return huggingface.NewProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
