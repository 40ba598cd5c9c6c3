package knowledge

import (
	"strings"
	"unicode/utf8"
)

const (
	EncyclopediaName   = "Wikipedia"
	encyclopediaDomain = "wikipedia.org"
	encyclopediaSuffix = " - Wikipedia"

	maxAnswerLength = 350
	ellipsis        = "..."
)

// Leading phrases removed before asking the encyclopedia, checked in this order.
var leadingPhrases = []string{"who is", "what is", "tell me about", "search for", "define"}

// Words that scope a web search to roughly the last day.
var recencyWords = []string{"latest", "current", "news", "today", "now", "price", "stock"}

// NormalizeTerm strips a known leading question phrase from query.
func NormalizeTerm(query string) string {
	term := strings.TrimSpace(query)
	for _, prefix := range leadingPhrases {
		if strings.HasPrefix(strings.ToLower(term), prefix) {
			term = strings.TrimSpace(term[len(prefix):])
		}
	}
	return term
}

// RecencyFor returns RecencyDay when the query asks for something current.
func RecencyFor(query string) Recency {
	lower := strings.ToLower(query)
	for _, w := range recencyWords {
		if strings.Contains(lower, w) {
			return RecencyDay
		}
	}
	return RecencyAny
}

// IsEncyclopediaURL reports whether a search hit points at the encyclopedia.
func IsEncyclopediaURL(u string) bool {
	return strings.Contains(strings.ToLower(u), encyclopediaDomain)
}

// TitleToTerm removes the site-name suffix search engines append to titles.
func TitleToTerm(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, encyclopediaSuffix, ""))
}

// Attribute prefixes an encyclopedia summary with its source.
func Attribute(summary string) string {
	return "According to " + EncyclopediaName + ": " + summary
}

// FormatSnippet builds the answer from a plain search hit, bounded for speech output.
func FormatSnippet(r SearchResult) string {
	source := strings.TrimSpace(r.Title)
	if source == "" {
		source = "Source"
	}
	return truncate("According to "+source+": "+strings.TrimSpace(r.Snippet), maxAnswerLength)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}
