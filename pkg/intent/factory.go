package intent

import (
	"fmt"
	"strings"
	"time"

	"voice-assistant-be/pkg/llm/factory"
	"voice-assistant-be/pkg/responses"
)

const (
	ProviderPattern     = "pattern"
	ProviderOllama      = factory.ProviderOllama
	ProviderHuggingFace = factory.ProviderHuggingFace
	ProviderNone        = "none"
)

type FactoryConfig struct {
	Provider string
	MinScore float64

	// LLM-backed providers only.
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// NewFromConfig builds the configured classifier. ProviderNone returns (nil, nil),
// which callers treat as "classifier unavailable".
func NewFromConfig(cfg FactoryConfig, corpus *responses.Corpus) (Classifier, error) {
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case ProviderNone:
		return nil, nil
	case ProviderOllama, ProviderHuggingFace:
		if corpus == nil || len(corpus.Intents) == 0 {
			return nil, fmt.Errorf("%s classifier needs an intents corpus for its label set", provider)
		}
		labels := make([]string, 0, len(corpus.Intents))
		for _, in := range corpus.Intents {
			labels = append(labels, in.Tag)
		}
		llmProvider, err := factory.NewLLMProvider(factory.Config{
			Provider: provider,
			Model:    cfg.Model,
			BaseURL:  cfg.BaseURL,
			APIKey:   cfg.APIKey,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return NewLLMClassifier(llmProvider, labels), nil
	case "", ProviderPattern:
		if corpus == nil || len(corpus.Intents) == 0 {
			return nil, nil
		}
		return NewPatternClassifier(corpus.Intents, cfg.MinScore), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s", cfg.Provider)
	}
}
