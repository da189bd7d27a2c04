// Package calc evaluates plain arithmetic expressions.
//
// The evaluator is a small recursive-descent parser restricted to
// numeric literals, the four basic operators and parentheses. It never
// resolves names, calls functions or touches anything outside the
// expression string, so it is safe to run on raw user input that has
// passed the arithmetic character-class check.
package calc

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrDivisionByZero is returned when the expression divides by zero.
var ErrDivisionByZero = errors.New("division by zero")

// Evaluate parses and evaluates an arithmetic expression.
// Grammar:
//
//	expr   = term { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = number | "(" expr ")" | ("+" | "-") factor
func Evaluate(input string) (float64, error) {
	p := &parser{input: input}
	p.skipSpaces()
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return 0, errors.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return value, nil
}

// Format renders an evaluated value the way a person would write it:
// integers without a decimal part, everything else in shortest form.
func Format(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parseExpr() (float64, error) {
	value, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.peek('+'):
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value += rhs
		case p.peek('-'):
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value -= rhs
		default:
			return value, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	value, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch {
		case p.peek('*'):
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			value *= rhs
		case p.peek('/'):
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, ErrDivisionByZero
			}
			value /= rhs
		default:
			return value, nil
		}
	}
}

func (p *parser) parseFactor() (float64, error) {
	p.skipSpaces()
	switch {
	case p.peek('('):
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if !p.peek(')') {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	case p.peek('-'):
		p.pos++
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case p.peek('+'):
		p.pos++
		return p.parseFactor()
	default:
		return p.parseNumber()
	}
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		if p.pos >= len(p.input) {
			return 0, errors.New("unexpected end of expression")
		}
		return 0, errors.Errorf("expected number at position %d", p.pos)
	}
	literal := p.input[start:p.pos]
	if strings.Count(literal, ".") > 1 {
		return 0, errors.Errorf("malformed number %q", literal)
	}
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed number %q", literal)
	}
	return value, nil
}

func (p *parser) peek(c byte) bool {
	return p.pos < len(p.input) && p.input[p.pos] == c
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
