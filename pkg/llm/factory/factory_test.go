package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant-be/pkg/llm/huggingface"
	"voice-assistant-be/pkg/llm/ollama"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Config{Provider: "Ollama", Model: "llama3"})
	require.NoError(t, err)
	o, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", o.BaseURL)

	p, err = NewLLMProvider(Config{Provider: ProviderHuggingFace, APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &huggingface.Provider{}, p)

	_, err = NewLLMProvider(Config{Provider: ProviderHuggingFace})
	assert.Error(t, err)

	_, err = NewLLMProvider(Config{Provider: "openai"})
	assert.Error(t, err)
}
