package intent

import (
	"context"
	"math"
	"strings"
	"unicode"

	"voice-assistant-be/pkg/responses"
)

// DefaultMinScore is the cosine similarity below which no label is returned.
const DefaultMinScore = 0.2

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"on": {}, "for": {}, "with": {}, "at": {}, "by": {}, "from": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "be": {}, "am": {}, "are": {}, "was": {}, "were": {},
	"i": {}, "me": {}, "my": {}, "you": {}, "your": {}, "we": {}, "our": {},
}

type vector map[string]float64

type example struct {
	label string
	vec   vector
	norm  float64
}

// PatternClassifier scores an utterance against the example patterns of each
// intent with TF-IDF weighted cosine similarity and returns the best label.
type PatternClassifier struct {
	examples []example
	idf      map[string]float64
	minScore float64
}

var _ Classifier = &PatternClassifier{}

// NewPatternClassifier indexes the patterns of every intent. minScore <= 0 uses DefaultMinScore.
func NewPatternClassifier(intents []responses.Intent, minScore float64) *PatternClassifier {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	var docs [][]string
	var labels []string
	for _, in := range intents {
		for _, p := range in.Patterns {
			tokens := tokenize(p)
			if len(tokens) == 0 {
				continue
			}
			docs = append(docs, tokens)
			labels = append(labels, in.Tag)
		}
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Smoothed idf, as in the usual sublinear TF-IDF setup.
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for tok, count := range df {
		idf[tok] = math.Log((1+n)/(1+float64(count))) + 1
	}

	c := &PatternClassifier{idf: idf, minScore: minScore}
	for i, doc := range docs {
		vec := c.weigh(doc)
		c.examples = append(c.examples, example{label: labels[i], vec: vec, norm: norm(vec)})
	}
	return c
}

func (c *PatternClassifier) Classify(_ context.Context, text string) (string, error) {
	label, _ := c.Score(text)
	return label, nil
}

// Score returns the best label and its similarity, or "" when nothing clears the threshold.
func (c *PatternClassifier) Score(text string) (string, float64) {
	query := c.weigh(tokenize(text))
	qNorm := norm(query)
	if qNorm == 0 {
		return "", 0
	}

	bestLabel, bestScore := "", 0.0
	for _, ex := range c.examples {
		if ex.norm == 0 {
			continue
		}
		dot := 0.0
		for tok, w := range query {
			dot += w * ex.vec[tok]
		}
		score := dot / (qNorm * ex.norm)
		if score > bestScore {
			bestLabel, bestScore = ex.label, score
		}
	}
	if bestScore < c.minScore {
		return "", bestScore
	}
	return bestLabel, bestScore
}

// weigh drops tokens never seen in the patterns; they carry no signal.
func (c *PatternClassifier) weigh(tokens []string) vector {
	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		if _, known := c.idf[tok]; known {
			tf[tok]++
		}
	}
	vec := make(vector, len(tf))
	for tok, count := range tf {
		vec[tok] = (1 + math.Log(float64(count))) * c.idf[tok]
	}
	return vec
}

func norm(v vector) float64 {
	sum := 0.0
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f == "" {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
