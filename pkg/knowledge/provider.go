package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by a SummaryProvider when no page matches the term.
var ErrNotFound = errors.New("knowledge: no matching page")

// AmbiguousError is returned when the term matches several topics.
type AmbiguousError struct {
	Term       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("knowledge: %q is ambiguous (%d candidates)", e.Term, len(e.Candidates))
}

// SummaryProvider produces a short encyclopedic summary for a term.
type SummaryProvider interface {
	Summarize(ctx context.Context, term string, sentences int) (string, error)
}

// Safety is the web-search content filtering level.
type Safety string

const (
	SafetyStrict   Safety = "strict"
	SafetyModerate Safety = "moderate"
	SafetyOff      Safety = "off"
)

// ParseSafety falls back to moderate for unknown values.
func ParseSafety(s string) Safety {
	switch Safety(strings.ToLower(strings.TrimSpace(s))) {
	case SafetyStrict:
		return SafetyStrict
	case SafetyOff:
		return SafetyOff
	default:
		return SafetyModerate
	}
}

// Recency limits search results to a time window. Empty means unscoped.
type Recency string

const (
	RecencyAny Recency = ""
	RecencyDay Recency = "d"
)

type SearchRequest struct {
	Query      string
	Region     string
	Safety     Safety
	Recency    Recency
	MaxResults int
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchProvider runs a general web search and returns results best-first.
type SearchProvider interface {
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
}
