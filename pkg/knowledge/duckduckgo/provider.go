package duckduckgo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voice-assistant-be/pkg/knowledge"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://html.duckduckgo.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxBodyBytes     = 1 << 20
)

// Provider searches the DuckDuckGo HTML endpoint, which needs no API key.
type Provider struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	limiter   *rate.Limiter
}

var _ knowledge.SearchProvider = &Provider{}

// NewProvider allows perSecond requests per second with a burst of one.
// A non-positive perSecond disables limiting.
func NewProvider(baseURL, userAgent string, perSecond float64) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Provider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// safetyParam maps the filter level to the kp parameter.
func safetyParam(s knowledge.Safety) string {
	switch s {
	case knowledge.SafetyStrict:
		return "1"
	case knowledge.SafetyOff:
		return "-2"
	default:
		return "-1"
	}
}

func (p *Provider) Search(ctx context.Context, req knowledge.SearchRequest) ([]knowledge.SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"q":  {req.Query},
		"kp": {safetyParam(req.Safety)},
	}
	if req.Region != "" {
		params.Set("kl", req.Region)
	}
	if req.Recency != knowledge.RecencyAny {
		params.Set("df", string(req.Recency))
	}

	searchURL := p.BaseURL + "/html/?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to look like a browser
	httpReq.Header.Set("User-Agent", p.UserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = knowledge.DefaultMaxResults
	}
	return parseResults(string(body), maxResults)
}
