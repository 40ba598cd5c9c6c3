package router

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/ai/refiner"
	"voice-assistant-be/pkg/intent"
	"voice-assistant-be/pkg/knowledge"
)

// ClarificationMessage is the reply when no stage has anything better to say.
const ClarificationMessage = "I'm not sure how to respond to that. Could you try rephrasing?"

const (
	timeLayout = "03:04 PM"
	dateLayout = "Monday, January 02, 2006"
)

// Stage names, in evaluation order.
const (
	StageIdentity      = "identity"
	StageDeterministic = "deterministic"
	StageSmallTalk     = "small_talk"
	StageSearch        = "search"
	StageArithmetic    = "arithmetic"
	StageFallback      = "fallback"
)

var (
	tracer = otel.Tracer("router")

	stageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_route_stage_total",
		Help: "Turns answered by each routing stage",
	}, []string{"stage"})
)

// Knowledge is the part of the knowledge chain the router calls.
type Knowledge interface {
	Summary(ctx context.Context, query string) (string, bool)
	Search(ctx context.Context, query string) string
}

// Calculator never fails; bad input yields a fixed apology.
type Calculator interface {
	Calculate(text string) string
}

// Replies is a random-draw view over the response table.
type Replies interface {
	Has(label string) bool
	Pick(label string) (string, bool)
}

// Input is one turn as the router sees it.
type Input struct {
	// Original is the utterance exactly as the user sent it.
	Original string
	Intent   string
	Refined  refiner.Result
}

type Result struct {
	Reply string
	Stage string
}

type stage struct {
	name string
	run  func(ctx context.Context, in *Input, sig Signals) (string, bool)
}

// Router runs an ordered chain of stages; the first one that answers wins.
type Router struct {
	knowledge  Knowledge
	calculator Calculator
	replies    Replies
	now        func() time.Time
	logger     logger.ILogger
	stages     []stage
}

type Option func(*Router)

// WithClock replaces time.Now for the time and date handlers.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

func NewRouter(k Knowledge, calc Calculator, replies Replies, log logger.ILogger, opts ...Option) *Router {
	r := &Router{
		knowledge:  k,
		calculator: calc,
		replies:    replies,
		now:        time.Now,
		logger:     log,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.stages = []stage{
		{StageIdentity, r.identity},
		{StageDeterministic, r.deterministic},
		{StageSmallTalk, r.smallTalk},
		{StageSearch, r.search},
		{StageArithmetic, r.arithmetic},
		{StageFallback, r.fallback},
	}
	return r
}

// Stages lists stage names in evaluation order.
func (r *Router) Stages() []string {
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.name
	}
	return names
}

// Route always returns a non-empty reply.
func (r *Router) Route(ctx context.Context, in Input) Result {
	ctx, span := tracer.Start(ctx, "router.Route")
	defer span.End()

	sig := Analyze(in.Refined.Lower)
	for _, s := range r.stages {
		reply, ok := s.run(ctx, &in, sig)
		if !ok || reply == "" {
			continue
		}
		stageTotal.WithLabelValues(s.name).Inc()
		span.SetAttributes(attribute.String("stage", s.name), attribute.String("intent", in.Intent))
		r.logger.Debug("ROUTER", "Turn routed", map[string]interface{}{
			"stage":  s.name,
			"intent": in.Intent,
			"merged": in.Refined.Merged,
		})
		return Result{Reply: reply, Stage: s.name}
	}

	stageTotal.WithLabelValues(StageFallback).Inc()
	return Result{Reply: ClarificationMessage, Stage: StageFallback}
}

func (r *Router) identity(ctx context.Context, in *Input, _ Signals) (string, bool) {
	if !hasIdentityPrefix(in.Refined.Lower) {
		return "", false
	}
	summary, ok := r.knowledge.Summary(ctx, in.Refined.Text)
	if !ok {
		return "", false
	}
	return knowledge.Attribute(summary), true
}

func (r *Router) deterministic(_ context.Context, in *Input, _ Signals) (string, bool) {
	switch in.Intent {
	case intent.LabelTime:
		return "It is " + r.now().Format(timeLayout) + ".", true
	case intent.LabelDate:
		return "Today is " + r.now().Format(dateLayout) + ".", true
	case intent.LabelJokes:
		if mentionsJoke(in.Original) {
			return r.replies.Pick(intent.LabelJokes)
		}
	}
	return "", false
}

// smallTalk lets a canned reply through only when the utterance carries no
// information request of its own.
func (r *Router) smallTalk(_ context.Context, in *Input, sig Signals) (string, bool) {
	if !intent.IsSmallTalk(in.Intent) || !r.replies.Has(in.Intent) {
		return "", false
	}
	// The word-count test looks at what the user typed, not the merged text.
	bare := !sig.HasQuestionWord && !sig.HasInfoKeyword && wordCount(in.Original) < 3
	if !sig.IsGreetingPhrase && !bare {
		return "", false
	}
	return r.replies.Pick(in.Intent)
}

func (r *Router) search(ctx context.Context, in *Input, sig Signals) (string, bool) {
	if !sig.HasQuestionWord && !sig.HasInfoKeyword && !in.Refined.IsConnector {
		return "", false
	}
	return r.knowledge.Search(ctx, in.Refined.Text), true
}

func (r *Router) arithmetic(_ context.Context, in *Input, _ Signals) (string, bool) {
	if !looksArithmetic(in.Original) {
		return "", false
	}
	return r.calculator.Calculate(in.Original), true
}

func (r *Router) fallback(ctx context.Context, in *Input, sig Signals) (string, bool) {
	if sig.WordCount > 2 {
		return r.knowledge.Search(ctx, in.Refined.Text), true
	}
	if reply, ok := r.replies.Pick(in.Intent); ok {
		return reply, true
	}
	return ClarificationMessage, true
}
