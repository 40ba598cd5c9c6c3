package calc

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	FailureMessage = "I couldn't calculate that."
	resultPrefix   = "The result is "
)

var (
	ErrNoExpression   = errors.New("no arithmetic expression found")
	ErrDivisionByZero = errors.New("division by zero")
)

// SyntaxError reports where the expression stopped making sense.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

var expressionPattern = regexp.MustCompile(`[\d.\s+\-*/()]+`)

// Extract returns the longest run of arithmetic characters in text.
// Runs that contain only whitespace do not count.
func Extract(text string) (string, bool) {
	best := ""
	for _, m := range expressionPattern.FindAllString(text, -1) {
		trimmed := strings.TrimSpace(m)
		if trimmed == "" {
			continue
		}
		if len(trimmed) > len(best) {
			best = trimmed
		}
	}
	return best, best != ""
}

// Evaluate parses expr as arithmetic over float64 with the usual precedence.
// Only numeric literals, + - * /, unary signs and parentheses are accepted.
func Evaluate(expr string) (float64, error) {
	p := &parser{src: expr}
	p.next()
	if p.tok.kind == tokEOF {
		return 0, ErrNoExpression
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokEOF {
		return 0, &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected %q", p.tok.text)}
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &SyntaxError{Pos: 0, Msg: "result is not a finite number"}
	}
	return v, nil
}

// Evaluator answers arithmetic requests embedded in free text.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Calculate never fails: any problem collapses into FailureMessage.
func (e *Evaluator) Calculate(text string) string {
	expr, ok := Extract(text)
	if !ok {
		return FailureMessage
	}
	v, err := Evaluate(expr)
	if err != nil {
		return FailureMessage
	}
	return resultPrefix + Format(v)
}

// Format prints whole numbers without a fractional part.
func Format(v float64) string {
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
