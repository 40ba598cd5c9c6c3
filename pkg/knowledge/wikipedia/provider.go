package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"voice-assistant-be/pkg/knowledge"
)

const (
	DefaultBaseURL   = "https://en.wikipedia.org"
	defaultUserAgent = "voice-assistant-be/1.0 (+https://github.com/voice-assistant-be)"
	maxCandidates    = 20
	maxBodyBytes     = 1 << 20
)

// Provider fetches short article summaries from the MediaWiki action API.
type Provider struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

var _ knowledge.SummaryProvider = &Provider{}

func NewProvider(baseURL, userAgent string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Provider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// --- Response structs (Internal to this package) ---

type extractResponse struct {
	Query struct {
		Pages map[string]extractPage `json:"pages"`
	} `json:"query"`
}

type extractPage struct {
	PageID    int               `json:"pageid"`
	Title     string            `json:"title"`
	Extract   string            `json:"extract"`
	Missing   *string           `json:"missing,omitempty"`
	PageProps map[string]string `json:"pageprops,omitempty"`
}

type linksResponse struct {
	Query struct {
		Pages map[string]struct {
			Links []struct {
				NS    int    `json:"ns"`
				Title string `json:"title"`
			} `json:"links"`
		} `json:"pages"`
	} `json:"query"`
}

// Summarize resolves term to an article title and returns the first sentences of it.
// Disambiguation pages yield *knowledge.AmbiguousError; unknown terms yield knowledge.ErrNotFound.
func (p *Provider) Summarize(ctx context.Context, term string, sentences int) (string, error) {
	title, err := p.resolveTitle(ctx, term)
	if err != nil {
		return "", err
	}

	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"prop":        {"extracts|pageprops"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
	}
	if sentences > 0 {
		params.Set("exsentences", strconv.Itoa(sentences))
	}

	var resp extractResponse
	if err := p.get(ctx, params, &resp); err != nil {
		return "", err
	}

	for _, page := range resp.Query.Pages {
		if page.Missing != nil || page.PageID == 0 {
			return "", knowledge.ErrNotFound
		}
		if _, ok := page.PageProps["disambiguation"]; ok {
			candidates, err := p.links(ctx, page.Title)
			if err != nil {
				return "", err
			}
			return "", &knowledge.AmbiguousError{Term: term, Candidates: candidates}
		}
		extract := strings.TrimSpace(page.Extract)
		if extract == "" {
			return "", knowledge.ErrNotFound
		}
		return extract, nil
	}
	return "", knowledge.ErrNotFound
}

// resolveTitle uses opensearch so loosely phrased terms still land on an article.
func (p *Provider) resolveTitle(ctx context.Context, term string) (string, error) {
	params := url.Values{
		"action":    {"opensearch"},
		"format":    {"json"},
		"namespace": {"0"},
		"limit":     {"1"},
		"search":    {term},
	}

	// opensearch answers with [query, [titles], [descriptions], [urls]]
	var raw []json.RawMessage
	if err := p.get(ctx, params, &raw); err != nil {
		return "", err
	}
	if len(raw) < 2 {
		return "", fmt.Errorf("wikipedia opensearch: unexpected response shape")
	}
	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return "", fmt.Errorf("wikipedia opensearch: decode titles: %w", err)
	}
	if len(titles) == 0 || strings.TrimSpace(titles[0]) == "" {
		return "", knowledge.ErrNotFound
	}
	return titles[0], nil
}

func (p *Provider) links(ctx context.Context, title string) ([]string, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"prop":        {"links"},
		"plnamespace": {"0"},
		"pllimit":     {strconv.Itoa(maxCandidates)},
		"titles":      {title},
	}

	var resp linksResponse
	if err := p.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	var candidates []string
	for _, page := range resp.Query.Pages {
		for _, link := range page.Links {
			if link.Title != "" {
				candidates = append(candidates, link.Title)
			}
		}
	}
	return candidates, nil
}

func (p *Provider) get(ctx context.Context, params url.Values, out interface{}) error {
	endpoint := p.BaseURL + "/w/api.php?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia error: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
