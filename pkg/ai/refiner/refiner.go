package refiner

import (
	"strings"

	"voice-assistant-be/pkg/intent"
	"voice-assistant-be/pkg/session"
)

// Below this many words an utterance is treated as a possible follow-up.
const shortUtteranceWords = 5

var connectorPrefixes = []string{"in ", "at ", "for ", "with ", "about ", "on ", "and "}

var shortGreetings = map[string]struct{}{
	"hi":        {},
	"hello":     {},
	"hey":       {},
	"hey there": {},
}

// Result is the utterance the router should work on for this turn.
type Result struct {
	Text  string
	Lower string
	// Merged is true when Text was prefixed with the previous user utterance.
	Merged bool
	// IsConnector reports that the original utterance opened with a connector word.
	// It is computed before suppression so the router can use it as a search trigger.
	IsConnector bool
}

// Refine decides whether text continues the previous user utterance in history
// and, if so, joins the two. History is never modified.
func Refine(text, label string, history session.Session) Result {
	lower := strings.ToLower(text)
	res := Result{
		Text:        text,
		Lower:       lower,
		IsConnector: HasConnectorPrefix(lower),
	}

	if !IsCandidate(text, label) {
		return res
	}

	prev, ok := history.LastUserText()
	if !ok {
		return res
	}

	res.Text = prev + " " + text
	res.Lower = strings.ToLower(res.Text)
	res.Merged = true
	return res
}

// IsCandidate reports whether text looks like an elliptical follow-up that is
// allowed to absorb earlier context.
func IsCandidate(text, label string) bool {
	lower := strings.ToLower(text)
	if intent.IsSmallTalk(label) {
		return false
	}
	if _, greeting := shortGreetings[strings.TrimSpace(lower)]; greeting {
		return false
	}
	return len(strings.Fields(text)) < shortUtteranceWords || HasConnectorPrefix(lower)
}

// HasConnectorPrefix expects lower-cased input.
func HasConnectorPrefix(lower string) bool {
	for _, p := range connectorPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
