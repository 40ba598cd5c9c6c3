package calc

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokOp
	tokLParen
	tokRParen
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  float64
}

// parser is a recursive-descent evaluator:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = { "+" | "-" } factor
//	factor = number | "(" expr ")"
type parser struct {
	src   string
	pos   int
	tok   token
	depth int
}

const maxDepth = 64

func (p *parser) next() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' {
			p.pos++
			continue
		}
		break
	}
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: p.pos}
		return
	}

	start := p.pos
	c := p.src[p.pos]
	switch {
	case c == '+' || c == '-' || c == '*' || c == '/':
		p.pos++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case isDigit(c) || c == '.':
		for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}
		text := p.src[start:p.pos]
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.tok = token{kind: tokInvalid, text: text, pos: start}
			return
		}
		p.tok = token{kind: tokNumber, text: text, pos: start, num: n}
	default:
		p.pos++
		p.tok = token{kind: tokInvalid, text: string(c), pos: start}
	}
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text
		opPos := p.tok.pos
		p.next()
		// "**" is exponentiation elsewhere; reject it rather than misread it.
		if op == "*" && p.tok.kind == tokOp && p.tok.text == "*" && p.tok.pos == opPos+1 {
			return 0, &SyntaxError{Pos: opPos, Msg: "unsupported operator \"**\""}
		}
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			left *= right
			continue
		}
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		left /= right
	}
	return left, nil
}

func (p *parser) parseUnary() (float64, error) {
	sign := 1.0
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		if p.tok.text == "-" {
			sign = -sign
		}
		p.next()
	}
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	return sign * v, nil
}

func (p *parser) parseFactor() (float64, error) {
	switch p.tok.kind {
	case tokNumber:
		v := p.tok.num
		p.next()
		return v, nil
	case tokLParen:
		p.depth++
		if p.depth > maxDepth {
			return 0, &SyntaxError{Pos: p.tok.pos, Msg: "expression nested too deeply"}
		}
		p.next()
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.tok.kind != tokRParen {
			return 0, &SyntaxError{Pos: p.tok.pos, Msg: "missing closing parenthesis"}
		}
		p.depth--
		p.next()
		return v, nil
	case tokEOF:
		return 0, &SyntaxError{Pos: p.tok.pos, Msg: "unexpected end of expression"}
	default:
		return 0, &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected %q", p.tok.text)}
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
