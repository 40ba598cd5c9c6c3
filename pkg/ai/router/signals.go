package router

import (
	"regexp"
	"strings"
)

// Keyword lists are matched literally.
var (
	identityPrefixes = []string{"who is", "what is", "tell me about", "define"}

	questionWords = map[string]struct{}{
		"who": {}, "what": {}, "where": {}, "when": {}, "why": {}, "how": {},
		"is": {}, "can": {}, "does": {}, "do": {}, "search": {},
	}

	infoKeywords = []string{
		"pm", "prime minister", "president", "capital", "population", "weather",
		"news", "meaning", "definition", "price", "stock", "birth", "death",
		"distance", "highest", "largest", "smallest",
	}

	greetingPhrases = []string{"how are you", "how's it going", "how is it going", "what's up"}

	arithmeticPattern = regexp.MustCompile(`\d+\s*[+\-*/]`)
)

// Signals are the lexical features the small-talk gate and search trigger look at.
type Signals struct {
	HasQuestionWord  bool
	HasInfoKeyword   bool
	IsGreetingPhrase bool
	WordCount        int
}

// Analyze expects lower-cased text.
func Analyze(lower string) Signals {
	tokens := strings.Fields(lower)
	return Signals{
		HasQuestionWord:  hasQuestionWord(tokens),
		HasInfoKeyword:   containsAny(lower, infoKeywords),
		IsGreetingPhrase: containsAny(lower, greetingPhrases),
		WordCount:        len(tokens),
	}
}

func hasQuestionWord(tokens []string) bool {
	for i, tok := range tokens {
		if _, ok := questionWords[tok]; ok {
			return true
		}
		// "tell me" is the one two-token entry.
		if tok == "tell" && i+1 < len(tokens) && tokens[i+1] == "me" {
			return true
		}
	}
	return false
}

func hasIdentityPrefix(lower string) bool {
	for _, p := range identityPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func looksArithmetic(original string) bool {
	return strings.Contains(original, "calculate") || arithmeticPattern.MatchString(original)
}

func mentionsJoke(original string) bool {
	lower := strings.ToLower(original)
	return strings.Contains(lower, "joke") || strings.Contains(lower, "laugh")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
