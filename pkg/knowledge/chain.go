package knowledge

import (
	"context"
	"errors"
	"strings"
	"time"

	"voice-assistant-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	NothingFoundMessage = "I couldn't find anything on the web about that right now."
	TroubleMessage      = "I'm having trouble connecting to the internet."
)

var tracer = otel.Tracer("knowledge")

// Config tunes the chain. Zero values fall back to the defaults below.
type Config struct {
	Timeout    time.Duration
	Sentences  int
	Region     string
	Safety     Safety
	MaxResults int
}

const (
	DefaultTimeout    = 5 * time.Second
	DefaultSentences  = 2
	DefaultRegion     = "us-en"
	DefaultMaxResults = 3
)

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Sentences <= 0 {
		c.Sentences = DefaultSentences
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Safety == "" {
		c.Safety = SafetyModerate
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	return c
}

// Chain resolves questions against an encyclopedia first and the open web second.
// None of its methods return errors: every failure becomes "no result" or a fixed message.
type Chain struct {
	summaries SummaryProvider
	search    SearchProvider
	cache     Cache
	cfg       Config
	logger    logger.ILogger
	group     singleflight.Group
}

// NewChain wires the providers. cache may be nil.
func NewChain(summaries SummaryProvider, search SearchProvider, cache Cache, cfg Config, log logger.ILogger) *Chain {
	if cache == nil {
		cache = noCache{}
	}
	return &Chain{
		summaries: summaries,
		search:    search,
		cache:     cache,
		cfg:       cfg.withDefaults(),
		logger:    log,
	}
}

// Summary asks the encyclopedia about query. ok is false when there is nothing to say.
func (c *Chain) Summary(ctx context.Context, query string) (string, bool) {
	term := NormalizeTerm(query)
	if term == "" || c.summaries == nil {
		return "", false
	}

	ctx, span := tracer.Start(ctx, "knowledge.Summary", trace.WithAttributes(attribute.String("term", term)))
	defer span.End()

	key := "summary:" + strings.ToLower(term)
	if cached, ok := c.cache.Get(ctx, key); ok {
		lookupTotal.WithLabelValues(sourceSummary, outcomeCacheHit).Inc()
		return cached, true
	}

	// The lookup is shared with concurrent callers, so one caller going away
	// must not cut it short; the per-call timeout still applies.
	shared := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		summary := c.lookupSummary(shared, term)
		if summary != "" {
			c.cache.Set(shared, key, summary)
		}
		return summary, nil
	})
	summary := v.(string)
	span.SetAttributes(attribute.Bool("found", summary != ""))
	return summary, summary != ""
}

func (c *Chain) lookupSummary(ctx context.Context, term string) string {
	summary, err := c.summarize(ctx, term)
	if err == nil {
		return c.answered(sourceSummary, summary)
	}

	var ambiguous *AmbiguousError
	switch {
	case errors.As(err, &ambiguous) && len(ambiguous.Candidates) > 0:
		lookupTotal.WithLabelValues(sourceSummary, outcomeAmbiguous).Inc()
		candidate := ambiguous.Candidates[0]
		c.logger.Info("KNOWLEDGE", "Ambiguous term, retrying with first candidate", map[string]interface{}{
			"term":      term,
			"candidate": candidate,
		})
		summary, err = c.summarize(ctx, candidate)
		if err != nil {
			c.logger.Warn("KNOWLEDGE", "Disambiguation retry failed", map[string]interface{}{
				"candidate": candidate,
				"error":     err.Error(),
			})
			lookupTotal.WithLabelValues(sourceSummary, outcomeError).Inc()
			return ""
		}
		return c.answered(sourceSummary, summary)
	case errors.Is(err, ErrNotFound):
		lookupTotal.WithLabelValues(sourceSummary, outcomeNotFound).Inc()
		c.logger.Debug("KNOWLEDGE", "No encyclopedia page", map[string]interface{}{"term": term})
		return ""
	default:
		lookupTotal.WithLabelValues(sourceSummary, outcomeError).Inc()
		c.logger.Warn("KNOWLEDGE", "Encyclopedia lookup failed", map[string]interface{}{
			"term":  term,
			"error": err.Error(),
		})
		return ""
	}
}

func (c *Chain) summarize(ctx context.Context, term string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() { lookupDuration.WithLabelValues(sourceSummary).Observe(time.Since(start).Seconds()) }()

	summary, err := c.summaries.Summarize(ctx, term, c.cfg.Sentences)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

func (c *Chain) answered(source, text string) string {
	if text == "" {
		lookupTotal.WithLabelValues(source, outcomeEmpty).Inc()
		return ""
	}
	lookupTotal.WithLabelValues(source, outcomeAnswered).Inc()
	return text
}

// Search runs the full chain: web search, preferring the encyclopedia's own
// summary when the best hit is an encyclopedia page. It always returns text.
func (c *Chain) Search(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if c.search == nil {
		return TroubleMessage
	}

	recency := RecencyFor(query)
	ctx, span := tracer.Start(ctx, "knowledge.Search", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Bool("recent", recency != RecencyAny),
	))
	defer span.End()

	// Time-scoped answers go stale quickly, so they skip the cache.
	cacheable := recency == RecencyAny
	key := "search:" + strings.ToLower(query)
	if cacheable {
		if cached, ok := c.cache.Get(ctx, key); ok {
			lookupTotal.WithLabelValues(sourceSearch, outcomeCacheHit).Inc()
			return cached
		}
	}

	shared := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do(key+"|"+string(recency), func() (interface{}, error) {
		answer, ok := c.lookupSearch(shared, query, recency)
		if ok && cacheable {
			c.cache.Set(shared, key, answer)
		}
		return answer, nil
	})
	return v.(string)
}

// lookupSearch reports ok=false for degraded answers so they are not cached.
func (c *Chain) lookupSearch(ctx context.Context, query string, recency Recency) (string, bool) {
	results, err := c.runSearch(ctx, SearchRequest{
		Query:      query,
		Region:     c.cfg.Region,
		Safety:     c.cfg.Safety,
		Recency:    recency,
		MaxResults: c.cfg.MaxResults,
	})
	if err != nil {
		lookupTotal.WithLabelValues(sourceSearch, outcomeError).Inc()
		c.logger.Error("KNOWLEDGE", "Web search failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return TroubleMessage, false
	}
	if len(results) == 0 {
		lookupTotal.WithLabelValues(sourceSearch, outcomeEmpty).Inc()
		c.logger.Info("KNOWLEDGE", "No web results", map[string]interface{}{"query": query})
		return NothingFoundMessage, false
	}

	top := results[0]
	lookupTotal.WithLabelValues(sourceSearch, outcomeAnswered).Inc()
	if IsEncyclopediaURL(top.URL) {
		if summary, ok := c.Summary(ctx, TitleToTerm(top.Title)); ok {
			return Attribute(summary), true
		}
		c.logger.Debug("KNOWLEDGE", "Encyclopedia hit had no summary, using snippet", map[string]interface{}{"title": top.Title})
	}
	return FormatSnippet(top), true
}

func (c *Chain) runSearch(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() { lookupDuration.WithLabelValues(sourceSearch).Observe(time.Since(start).Seconds()) }()

	results, err := c.search.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(results) > req.MaxResults {
		results = results[:req.MaxResults]
	}
	return results, nil
}
