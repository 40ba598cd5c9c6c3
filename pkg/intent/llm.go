package intent

import (
	"context"
	"fmt"
	"strings"

	"voice-assistant-be/pkg/llm"
)

// LLMClassifier asks a chat model to pick one of a fixed set of labels.
type LLMClassifier struct {
	provider llm.LLMProvider
	labels   []string
	known    map[string]string // lower-cased answer -> tag as written in the intents file
}

var _ Classifier = &LLMClassifier{}

func NewLLMClassifier(provider llm.LLMProvider, labels []string) *LLMClassifier {
	known := make(map[string]string, len(labels))
	for _, l := range labels {
		known[strings.ToLower(l)] = l
	}
	return &LLMClassifier{provider: provider, labels: labels, known: known}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (string, error) {
	if len(c.labels) == 0 {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"Classify the user's message into exactly one of these intents: %s.\n"+
			"Answer with the intent name only, or \"none\" if nothing fits.",
		strings.Join(c.labels, ", "),
	)
	answer, err := c.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: prompt},
		{Role: llm.RoleUser, Content: text},
	}, llm.WithTemperature(0), llm.WithMaxTokens(8))
	if err != nil {
		return "", fmt.Errorf("llm classify: %w", err)
	}

	label, ok := c.known[strings.ToLower(strings.Trim(strings.TrimSpace(answer), ".\"'`"))]
	if !ok {
		return "", nil
	}
	return label, nil
}
