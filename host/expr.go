// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	errExprSyntax      = errors.New("expression syntax error")
	errDivideByZero    = errors.New("division by zero")
	errShiftOutOfRange = errors.New("shift count out of range")
)

type tokenKind byte

const (
	tokenNone tokenKind = iota
	tokenNumber
	tokenIdentifier
	tokenOp
	tokenLParen
	tokenRParen
)

type exprToken struct {
	kind  tokenKind
	value int64
	ident string
	op    *operator
}

// An operator is either a prefix unary operator or a left-associative
// binary operator.
type operator struct {
	symbol     string
	precedence byte
	unary      bool
	eval       func(a, b int64) (int64, error)
}

func total(fn func(a, b int64) int64) func(a, b int64) (int64, error) {
	return func(a, b int64) (int64, error) { return fn(a, b), nil }
}

func checkShift(b int64) error {
	if b < 0 || b > 63 {
		return errShiftOutOfRange
	}
	return nil
}

var binaryOps = map[string]*operator{
	"*": {"*", 6, false, total(func(a, b int64) int64 { return a * b })},
	"/": {"/", 6, false, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errDivideByZero
		}
		return a / b, nil
	}},
	"%": {"%", 6, false, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errDivideByZero
		}
		return a % b, nil
	}},
	"+": {"+", 5, false, total(func(a, b int64) int64 { return a + b })},
	"-": {"-", 5, false, total(func(a, b int64) int64 { return a - b })},
	"<<": {"<<", 4, false, func(a, b int64) (int64, error) {
		if err := checkShift(b); err != nil {
			return 0, err
		}
		return a << uint(b), nil
	}},
	">>": {">>", 4, false, func(a, b int64) (int64, error) {
		if err := checkShift(b); err != nil {
			return 0, err
		}
		return a >> uint(b), nil
	}},
	"&": {"&", 3, false, total(func(a, b int64) int64 { return a & b })},
	"^": {"^", 2, false, total(func(a, b int64) int64 { return a ^ b })},
	"|": {"|", 1, false, total(func(a, b int64) int64 { return a | b })},
}

var unaryOps = map[byte]*operator{
	'-': {"-", 7, true, total(func(a, _ int64) int64 { return -a })},
	'+': {"+", 7, true, total(func(a, _ int64) int64 { return a })},
	'~': {"~", 7, true, total(func(a, _ int64) int64 { return ^a })},
}

// A resolver supplies values for identifiers found in an expression.
type resolver interface {
	resolveIdentifier(s string) (int64, error)
}

// An exprParser evaluates integer expressions using the shunting-yard
// algorithm. Numbers are decimal unless hexMode is set. The prefixes $, 0x
// and % (binary) and 'c' character literals are always accepted, and 0b
// selects binary outside hex mode.
type exprParser struct {
	output  []exprToken
	opstack []exprToken
	values  []int64
	hexMode bool
}

func newExprParser() *exprParser {
	return &exprParser{}
}

func (p *exprParser) reset() {
	p.output = p.output[:0]
	p.opstack = p.opstack[:0]
	p.values = p.values[:0]
}

// Parse evaluates the expression, looking up identifiers with 'r'.
func (p *exprParser) Parse(expr string, r resolver) (int64, error) {
	defer p.reset()

	expectOperand := true
	s := expr
	for {
		tok, rest, err := p.lex(s, expectOperand)
		if err != nil {
			return 0, err
		}
		if tok.kind == tokenNone {
			break
		}
		s = rest

		switch tok.kind {
		case tokenNumber, tokenIdentifier:
			if !expectOperand {
				return 0, errExprSyntax
			}
			if tok.kind == tokenIdentifier {
				v, err := r.resolveIdentifier(tok.ident)
				if err != nil {
					return 0, err
				}
				tok = exprToken{kind: tokenNumber, value: v}
			}
			p.output = append(p.output, tok)
			expectOperand = false

		case tokenLParen:
			if !expectOperand {
				return 0, errExprSyntax
			}
			p.opstack = append(p.opstack, tok)

		case tokenRParen:
			if expectOperand {
				return 0, errExprSyntax
			}
			if !p.popUntilLParen() {
				return 0, errExprSyntax
			}

		case tokenOp:
			if tok.op.unary {
				if !expectOperand {
					return 0, errExprSyntax
				}
				p.opstack = append(p.opstack, tok)
				break
			}
			if expectOperand {
				return 0, errExprSyntax
			}
			for p.shouldPop(tok.op) {
				p.output = append(p.output, p.pop())
			}
			p.opstack = append(p.opstack, tok)
			expectOperand = true
		}
	}

	if expectOperand {
		return 0, errExprSyntax
	}
	for len(p.opstack) > 0 {
		tok := p.pop()
		if tok.kind == tokenLParen {
			return 0, errExprSyntax
		}
		p.output = append(p.output, tok)
	}
	return p.eval()
}

func (p *exprParser) pop() exprToken {
	top := p.opstack[len(p.opstack)-1]
	p.opstack = p.opstack[:len(p.opstack)-1]
	return top
}

// Move operators to the output until the matching left parenthesis.
func (p *exprParser) popUntilLParen() bool {
	for len(p.opstack) > 0 {
		tok := p.pop()
		if tok.kind == tokenLParen {
			return true
		}
		p.output = append(p.output, tok)
	}
	return false
}

func (p *exprParser) shouldPop(cur *operator) bool {
	if len(p.opstack) == 0 {
		return false
	}
	top := p.opstack[len(p.opstack)-1]
	return top.kind == tokenOp && top.op.precedence >= cur.precedence
}

// Evaluate the postfix output queue.
func (p *exprParser) eval() (int64, error) {
	for _, tok := range p.output {
		if tok.kind == tokenNumber {
			p.values = append(p.values, tok.value)
			continue
		}

		n := 2
		if tok.op.unary {
			n = 1
		}
		if len(p.values) < n {
			return 0, errExprSyntax
		}
		args := p.values[len(p.values)-n:]
		p.values = p.values[:len(p.values)-n]

		var a, b int64
		if n == 1 {
			a = args[0]
		} else {
			a, b = args[0], args[1]
		}
		v, err := tok.op.eval(a, b)
		if err != nil {
			return 0, err
		}
		p.values = append(p.values, v)
	}

	if len(p.values) != 1 {
		return 0, errExprSyntax
	}
	return p.values[0], nil
}

// Scan the next token from 's'. A token of kind tokenNone marks the end of
// the expression.
func (p *exprParser) lex(s string, expectOperand bool) (tok exprToken, rest string, err error) {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	if s == "" {
		return exprToken{}, s, nil
	}

	c := s[0]
	switch {
	case c == '(':
		return exprToken{kind: tokenLParen}, s[1:], nil
	case c == ')':
		return exprToken{kind: tokenRParen}, s[1:], nil
	case c == '$':
		return p.lexNumber(s[1:], 16)
	case c == '%' && expectOperand:
		return p.lexNumber(s[1:], 2)
	case c == '\'':
		if len(s) < 3 || s[2] != '\'' {
			return exprToken{}, s, errExprSyntax
		}
		return exprToken{kind: tokenNumber, value: int64(s[1])}, s[3:], nil
	case c == '0' && len(s) > 1 && (s[1] == 'x' || s[1] == 'X'):
		return p.lexNumber(s[2:], 16)
	case c == '0' && len(s) > 1 && (s[1] == 'b' || s[1] == 'B') && !p.hexMode:
		return p.lexNumber(s[2:], 2)
	case isDigit(c):
		if p.hexMode {
			return p.lexNumber(s, 16)
		}
		return p.lexNumber(s, 10)
	case isIdentStart(c):
		n := scanWhile(s, isIdentChar)
		word := s[:n]
		if p.hexMode && scanWhile(word, isHexDigit) == n {
			return p.lexNumber(s, 16)
		}
		return exprToken{kind: tokenIdentifier, ident: word}, s[n:], nil
	case expectOperand && unaryOps[c] != nil:
		return exprToken{kind: tokenOp, op: unaryOps[c]}, s[1:], nil
	}

	for _, sym := range []string{"<<", ">>", string(c)} {
		if len(s) >= len(sym) && s[:len(sym)] == sym {
			if op, ok := binaryOps[sym]; ok {
				return exprToken{kind: tokenOp, op: op}, s[len(sym):], nil
			}
		}
	}
	return exprToken{}, s, errExprSyntax
}

// Scan a number in the given base. The digits run to the end of the
// alphanumeric word, so "12ab" in decimal is an error rather than two
// tokens.
func (p *exprParser) lexNumber(s string, base int) (exprToken, string, error) {
	n := scanWhile(s, isIdentChar)
	if n == 0 {
		return exprToken{}, s, errExprSyntax
	}
	v, err := strconv.ParseInt(s[:n], base, 64)
	if err != nil {
		return exprToken{}, s, fmt.Errorf("%w: invalid number '%s'", errExprSyntax, s[:n])
	}
	return exprToken{kind: tokenNumber, value: v}, s[n:], nil
}

func scanWhile(s string, fn func(c byte) bool) int {
	i := 0
	for i < len(s) && fn(s[i]) {
		i++
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '.'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
