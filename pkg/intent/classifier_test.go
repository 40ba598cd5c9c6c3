package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/llm"
	"voice-assistant-be/pkg/responses"
)

var testIntents = []responses.Intent{
	{Tag: "greeting", Patterns: []string{"hi", "hello", "hey there", "good morning"}},
	{Tag: "goodbye", Patterns: []string{"bye", "see you later", "goodbye"}},
	{Tag: "thanks", Patterns: []string{"thanks", "thank you", "that's helpful"}},
	{Tag: "time", Patterns: []string{"what time is it", "tell me the time", "current time"}},
	{Tag: "jokes", Patterns: []string{"tell me a joke", "make me laugh", "say something funny"}},
}

type funcClassifier func(ctx context.Context, text string) (string, error)

func (f funcClassifier) Classify(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

func TestPatternClassifier(t *testing.T) {
	c := NewPatternClassifier(testIntents, 0)

	tests := []struct {
		text string
		want string
	}{
		{"hello", "greeting"},
		{"Hey there!", "greeting"},
		{"what time is it now", "time"},
		{"tell me a joke please", "jokes"},
		{"thank you so much", "thanks"},
		{"bye", "goodbye"},
		{"quantum chromodynamics", ""},
		{"", ""},
		{"the of and", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatternClassifier_MinScore(t *testing.T) {
	strict := NewPatternClassifier(testIntents, 0.99)

	label, score := strict.Score("hello there friend good")
	assert.Empty(t, label)
	assert.Greater(t, score, 0.0)

	label, _ = strict.Score("hello")
	assert.Equal(t, "greeting", label)
}

func TestPatternClassifier_EmptyCorpus(t *testing.T) {
	c := NewPatternClassifier(nil, 0)
	got, err := c.Classify(context.Background(), "hello")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSafe(t *testing.T) {
	log := logger.NewNopLogger()
	ctx := context.Background()

	t.Run("nil classifier", func(t *testing.T) {
		s := Safe(nil, log)
		assert.False(t, s.Enabled())
		assert.Empty(t, s.Predict(ctx, "hello"))
	})

	t.Run("error is swallowed", func(t *testing.T) {
		s := Safe(funcClassifier(func(context.Context, string) (string, error) {
			return "greeting", errors.New("model offline")
		}), log)
		assert.True(t, s.Enabled())
		assert.Empty(t, s.Predict(ctx, "hello"))
	})

	t.Run("panic is recovered", func(t *testing.T) {
		s := Safe(funcClassifier(func(context.Context, string) (string, error) {
			panic("boom")
		}), log)
		assert.NotPanics(t, func() {
			assert.Empty(t, s.Predict(ctx, "hello"))
		})
	})

	t.Run("label passes through", func(t *testing.T) {
		s := Safe(funcClassifier(func(context.Context, string) (string, error) {
			return "thanks", nil
		}), log)
		assert.Equal(t, "thanks", s.Predict(ctx, "thanks"))
	})
}

func TestIsSmallTalk(t *testing.T) {
	for _, l := range []string{"greeting", "goodbye", "thanks", "about", "help"} {
		assert.True(t, IsSmallTalk(l), l)
	}
	for _, l := range []string{"time", "jokes", "", "weather"} {
		assert.False(t, IsSmallTalk(l), l)
	}
}

type stubLLM struct {
	answer  string
	err     error
	history []llm.Message
}

func (s *stubLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	s.history = history
	return s.answer, s.err
}

func TestLLMClassifier(t *testing.T) {
	labels := []string{"greeting", "time"}

	t.Run("known label", func(t *testing.T) {
		stub := &stubLLM{answer: " Greeting.\n"}
		got, err := NewLLMClassifier(stub, labels).Classify(context.Background(), "hey")
		require.NoError(t, err)
		assert.Equal(t, "greeting", got)
		require.Len(t, stub.history, 2)
		assert.Contains(t, stub.history[0].Content, "greeting, time")
		assert.Equal(t, "hey", stub.history[1].Content)
	})

	t.Run("mixed-case tag keeps its spelling", func(t *testing.T) {
		got, err := NewLLMClassifier(&stubLLM{answer: "small_talk"}, []string{"Small_Talk", "Weather"}).
			Classify(context.Background(), "how are you")
		require.NoError(t, err)
		assert.Equal(t, "Small_Talk", got)

		got, err = NewLLMClassifier(&stubLLM{answer: "WEATHER"}, []string{"Small_Talk", "Weather"}).
			Classify(context.Background(), "is it raining")
		require.NoError(t, err)
		assert.Equal(t, "Weather", got)
	})

	t.Run("unknown label", func(t *testing.T) {
		got, err := NewLLMClassifier(&stubLLM{answer: "none"}, labels).Classify(context.Background(), "hey")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("provider error", func(t *testing.T) {
		_, err := NewLLMClassifier(&stubLLM{err: errors.New("timeout")}, labels).Classify(context.Background(), "hey")
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestNewFromConfig(t *testing.T) {
	corpus := &responses.Corpus{Intents: testIntents}

	c, err := NewFromConfig(FactoryConfig{Provider: "none"}, corpus)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewFromConfig(FactoryConfig{Provider: "pattern"}, corpus)
	require.NoError(t, err)
	assert.IsType(t, &PatternClassifier{}, c)

	c, err = NewFromConfig(FactoryConfig{Provider: "ollama", BaseURL: "http://localhost:11434", Model: "llama3"}, corpus)
	require.NoError(t, err)
	assert.IsType(t, &LLMClassifier{}, c)

	c, err = NewFromConfig(FactoryConfig{Provider: "huggingface", APIKey: "k", Model: "m"}, corpus)
	require.NoError(t, err)
	assert.IsType(t, &LLMClassifier{}, c)

	_, err = NewFromConfig(FactoryConfig{Provider: "huggingface"}, corpus)
	assert.Error(t, err, "missing api key")

	_, err = NewFromConfig(FactoryConfig{Provider: "ollama"}, &responses.Corpus{})
	assert.Error(t, err, "llm classifiers need labels")

	_, err = NewFromConfig(FactoryConfig{Provider: "bert"}, corpus)
	assert.Error(t, err)
}
