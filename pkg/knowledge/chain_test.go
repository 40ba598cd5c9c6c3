package knowledge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"voice-assistant-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummaries struct {
	mu      sync.Mutex
	answers map[string]string
	errs    map[string]error
	calls   []string
	delay   time.Duration
}

func (f *fakeSummaries) Summarize(ctx context.Context, term string, sentences int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, term)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err, ok := f.errs[term]; ok {
		return "", err
	}
	if s, ok := f.answers[term]; ok {
		return s, nil
	}
	return "", ErrNotFound
}

func (f *fakeSummaries) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeSearch struct {
	mu       sync.Mutex
	results  []SearchResult
	err      error
	requests []SearchRequest
	delay    time.Duration
}

func (f *fakeSearch) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func (f *fakeSearch) Requests() []SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SearchRequest(nil), f.requests...)
}

func newTestChain(s SummaryProvider, w SearchProvider, cache Cache) *Chain {
	return NewChain(s, w, cache, Config{Timeout: 200 * time.Millisecond}, logger.NewNopLogger())
}

func TestSummaryStripsLeadingPhrase(t *testing.T) {
	summaries := &fakeSummaries{answers: map[string]string{"Elon Musk": "Elon Musk is an entrepreneur."}}
	chain := newTestChain(summaries, nil, nil)

	got, ok := chain.Summary(context.Background(), "Who is Elon Musk")
	require.True(t, ok)
	assert.Equal(t, "Elon Musk is an entrepreneur.", got)
	assert.Equal(t, []string{"Elon Musk"}, summaries.Calls())
}

func TestSummaryAmbiguityRetriesOnce(t *testing.T) {
	summaries := &fakeSummaries{
		answers: map[string]string{"Mercury (planet)": "Mercury is the closest planet to the Sun."},
		errs: map[string]error{
			"Mercury": &AmbiguousError{Term: "Mercury", Candidates: []string{"Mercury (planet)", "Mercury (element)"}},
		},
	}
	chain := newTestChain(summaries, nil, nil)

	got, ok := chain.Summary(context.Background(), "what is Mercury")
	require.True(t, ok)
	assert.Equal(t, "Mercury is the closest planet to the Sun.", got)
	assert.Equal(t, []string{"Mercury", "Mercury (planet)"}, summaries.Calls())
}

func TestSummaryAmbiguityRetryFailureIsNoResult(t *testing.T) {
	summaries := &fakeSummaries{
		errs: map[string]error{
			"Java":          &AmbiguousError{Term: "Java", Candidates: []string{"Java (island)"}},
			"Java (island)": &AmbiguousError{Term: "Java (island)", Candidates: []string{"again"}},
		},
	}
	chain := newTestChain(summaries, nil, nil)

	_, ok := chain.Summary(context.Background(), "define Java")
	assert.False(t, ok)
	assert.Equal(t, []string{"Java", "Java (island)"}, summaries.Calls(), "only one retry")
}

func TestSummaryErrorsBecomeNoResult(t *testing.T) {
	summaries := &fakeSummaries{errs: map[string]error{"boom": errors.New("connection reset")}}
	chain := newTestChain(summaries, nil, nil)

	_, ok := chain.Summary(context.Background(), "boom")
	assert.False(t, ok)

	_, ok = chain.Summary(context.Background(), "unknown thing")
	assert.False(t, ok)

	_, ok = chain.Summary(context.Background(), "what is")
	assert.False(t, ok, "empty term after normalisation")
}

func TestSummaryTimeoutIsNoResult(t *testing.T) {
	summaries := &fakeSummaries{delay: time.Second, answers: map[string]string{"slow": "eventually"}}
	chain := newTestChain(summaries, nil, nil)

	start := time.Now()
	_, ok := chain.Summary(context.Background(), "slow")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestSearchPrefersEncyclopediaSummary(t *testing.T) {
	summaries := &fakeSummaries{answers: map[string]string{"Narendra Modi": "Narendra Modi is the Prime Minister of India."}}
	search := &fakeSearch{results: []SearchResult{
		{Title: "Narendra Modi - Wikipedia", URL: "https://en.wikipedia.org/wiki/Narendra_Modi", Snippet: "raw snippet"},
		{Title: "Other", URL: "https://example.com", Snippet: "other"},
	}}
	chain := newTestChain(summaries, search, nil)

	got := chain.Search(context.Background(), "pm of india")
	assert.Equal(t, "According to Wikipedia: Narendra Modi is the Prime Minister of India.", got)
	assert.Equal(t, []string{"Narendra Modi"}, summaries.Calls())
}

func TestSearchFallsBackToSnippetWhenSummaryFails(t *testing.T) {
	summaries := &fakeSummaries{errs: map[string]error{"Narendra Modi": errors.New("down")}}
	search := &fakeSearch{results: []SearchResult{
		{Title: "Narendra Modi - Wikipedia", URL: "https://en.wikipedia.org/wiki/Narendra_Modi", Snippet: "Narendra Damodardas Modi is an Indian politician."},
	}}
	chain := newTestChain(summaries, search, nil)

	got := chain.Search(context.Background(), "pm of india")
	assert.Equal(t, "According to Narendra Modi - Wikipedia: Narendra Damodardas Modi is an Indian politician.", got)
}

func TestSearchSnippetFormattingAndTruncation(t *testing.T) {
	long := strings.Repeat("word ", 100)
	search := &fakeSearch{results: []SearchResult{{Title: "Example News", URL: "https://news.example.com/a", Snippet: long}}}
	chain := newTestChain(nil, search, nil)

	got := chain.Search(context.Background(), "tell me something long")
	assert.Len(t, []rune(got), 350)
	assert.True(t, strings.HasPrefix(got, "According to Example News: word"))
	assert.True(t, strings.HasSuffix(got, "..."))

	search.results = []SearchResult{{Title: "", URL: "https://a.example", Snippet: "short"}}
	got = chain.Search(context.Background(), "short answer please")
	assert.Equal(t, "According to Source: short", got)
}

func TestSearchDegradedMessages(t *testing.T) {
	empty := newTestChain(nil, &fakeSearch{}, nil)
	assert.Equal(t, NothingFoundMessage, empty.Search(context.Background(), "nothing here"))

	failing := newTestChain(nil, &fakeSearch{err: errors.New("rate limited")}, nil)
	assert.Equal(t, TroubleMessage, failing.Search(context.Background(), "anything"))

	none := newTestChain(nil, nil, nil)
	assert.Equal(t, TroubleMessage, none.Search(context.Background(), "anything"))
}

func TestSearchRequestParameters(t *testing.T) {
	search := &fakeSearch{results: []SearchResult{{Title: "t", URL: "https://x", Snippet: "s"}}}
	chain := newTestChain(nil, search, nil)

	chain.Search(context.Background(), "current price of ethereum")
	chain.Search(context.Background(), "Who is the CEO of Tesla")

	reqs := search.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, RecencyDay, reqs[0].Recency)
	assert.Equal(t, RecencyAny, reqs[1].Recency)
	for _, r := range reqs {
		assert.Equal(t, "us-en", r.Region)
		assert.Equal(t, SafetyModerate, r.Safety)
		assert.Equal(t, 3, r.MaxResults)
	}
}

func TestSearchCachesOnlyTimelessAnswers(t *testing.T) {
	search := &fakeSearch{results: []SearchResult{{Title: "t", URL: "https://x", Snippet: "s"}}}
	chain := newTestChain(nil, search, NewMemoryCache(time.Minute))
	ctx := context.Background()

	chain.Search(ctx, "capital of france")
	chain.Search(ctx, "Capital of France")
	chain.Search(ctx, "latest news")
	chain.Search(ctx, "latest news")

	assert.Len(t, search.Requests(), 3)
}

func TestSearchDoesNotCacheFailures(t *testing.T) {
	search := &fakeSearch{err: errors.New("offline")}
	chain := newTestChain(nil, search, NewMemoryCache(time.Minute))
	ctx := context.Background()

	assert.Equal(t, TroubleMessage, chain.Search(ctx, "capital of france"))
	search.mu.Lock()
	search.err = nil
	search.results = []SearchResult{{Title: "Paris", URL: "https://x", Snippet: "Paris is the capital."}}
	search.mu.Unlock()
	assert.Equal(t, "According to Paris: Paris is the capital.", chain.Search(ctx, "capital of france"))
}

func TestTieredCacheBackfills(t *testing.T) {
	fast := NewMemoryCache(time.Minute)
	slow := NewMemoryCache(time.Minute)
	tiered := NewTieredCache(fast, slow)
	ctx := context.Background()

	slow.Set(ctx, "k", "v")
	got, ok := tiered.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	got, ok = fast.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestNormalizeHelpers(t *testing.T) {
	assert.Equal(t, "Elon Musk", NormalizeTerm("who is Elon Musk"))
	assert.Equal(t, "photosynthesis", NormalizeTerm("Define photosynthesis"))
	assert.Equal(t, "pm of india", NormalizeTerm("pm of india"))
	assert.Equal(t, "Go (programming language)", TitleToTerm("Go (programming language) - Wikipedia"))
	assert.True(t, IsEncyclopediaURL("https://EN.wikipedia.org/wiki/Go"))
	assert.False(t, IsEncyclopediaURL("https://go.dev"))
	assert.Equal(t, SafetyStrict, ParseSafety("STRICT"))
	assert.Equal(t, SafetyModerate, ParseSafety("whatever"))
}

func TestSharedLookupSurvivesCancelledCaller(t *testing.T) {
	summaries := &fakeSummaries{
		answers: map[string]string{"Go": "Go is a programming language."},
		delay:   50 * time.Millisecond,
	}
	search := &fakeSearch{
		results: []SearchResult{{Title: "Go.dev", URL: "https://go.dev", Snippet: "Build simple, secure, scalable systems."}},
		delay:   50 * time.Millisecond,
	}
	chain := newTestChain(summaries, search, nil)

	// The first caller gives up while the lookup is in flight; the second
	// joins the same lookup and must still get the real answer.
	first, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var summary, answer string
	var found bool

	wg.Add(2)
	go func() {
		defer wg.Done()
		chain.Summary(first, "what is Go")
		chain.Search(first, "golang systems language")
	}()
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		summary, found = chain.Summary(context.Background(), "what is Go")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()

	assert.True(t, found)
	assert.Equal(t, "Go is a programming language.", summary)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	answer = chain.Search(cancelled, "golang systems language")
	assert.Equal(t, "According to Go.dev: Build simple, secure, scalable systems.", answer)
}
