package intent

import (
	"context"
	"fmt"

	"voice-assistant-be/internal/pkg/logger"
)

// Labels the router treats specially. Everything else is a plain response-table key.
const (
	LabelTime     = "time"
	LabelDate     = "date"
	LabelJokes    = "jokes"
	LabelGreeting = "greeting"
	LabelGoodbye  = "goodbye"
	LabelThanks   = "thanks"
	LabelAbout    = "about"
	LabelHelp     = "help"
)

var smallTalk = map[string]struct{}{
	LabelGreeting: {},
	LabelGoodbye:  {},
	LabelThanks:   {},
	LabelAbout:    {},
	LabelHelp:     {},
}

// IsSmallTalk reports whether label is one of the small-talk labels.
func IsSmallTalk(label string) bool {
	_, ok := smallTalk[label]
	return ok
}

// Classifier predicts an intent label for an utterance. An empty label means "no prediction".
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// SafeClassifier never fails: errors, panics and a missing classifier all yield "".
type SafeClassifier struct {
	inner  Classifier
	logger logger.ILogger
}

func Safe(c Classifier, log logger.ILogger) *SafeClassifier {
	return &SafeClassifier{inner: c, logger: log}
}

// Enabled reports whether a real classifier is behind the wrapper.
func (s *SafeClassifier) Enabled() bool {
	return s != nil && s.inner != nil
}

func (s *SafeClassifier) Predict(ctx context.Context, text string) (label string) {
	if !s.Enabled() {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("INTENT", "Classifier panicked", map[string]interface{}{"error": fmt.Sprint(r)})
			label = ""
		}
	}()

	label, err := s.inner.Classify(ctx, text)
	if err != nil {
		s.logger.Warn("INTENT", "Classifier failed, continuing without intent", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return label
}
