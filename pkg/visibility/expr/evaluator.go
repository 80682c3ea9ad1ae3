// Package expr compiles compound visibility rules such as
//
//	Rechtsform == "AG" && Mitarbeiter != "0"
//	!(Branche == "Gastro") || `Finance Years` == "2025"
//
// Supported operators are ==, !=, &&, ||, ! and parentheses. Identifiers
// containing spaces are written in backticks. String comparisons are exact.
// Number literals compare against the answer parsed with the grouping
// convention of the numeric package, and `null` tests for an absent answer.
// A bare identifier is true when the answer is set and non-blank.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/numeric"
)

// Lookup resolves an answer by key.
type Lookup func(key string) (answers.Value, bool)

// predicate is a compiled sub-expression.
type predicate func(Lookup) bool

// Program is a compiled rule. It is immutable and safe for concurrent use.
type Program struct {
	source string
	test   predicate
}

// Compile parses rule into a Program.
func Compile(rule string) (*Program, error) {
	source := strings.TrimSpace(rule)
	if source == "" {
		return nil, errors.New("visibility/expr: empty expression")
	}

	p := &parser{lex: lexer{src: source}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	test, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", p.tok.text)
	}
	return &Program{source: source, test: test}, nil
}

// Source returns the rule the program was compiled from.
func (p *Program) Source() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Eval runs the program against lookup. A nil program is true.
func (p *Program) Eval(lookup Lookup) bool {
	if p == nil || p.test == nil {
		return true
	}
	if lookup == nil {
		lookup = func(string) (answers.Value, bool) { return answers.Unset(), false }
	}
	return p.test(lookup)
}

// parser is a recursive descent parser holding one token of lookahead.
//
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" or ")" | ident [ ( "==" | "!=" ) literal ]
type parser struct {
	lex lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// accept consumes the current token when it has kind.
func (p *parser) accept(kind tokenKind) (bool, error) {
	if p.tok.kind != kind {
		return false, nil
	}
	return true, p.advance()
}

func (p *parser) or() (predicate, error) {
	return p.chain(tokOr, p.and, func(a, b predicate) predicate {
		return func(l Lookup) bool { return a(l) || b(l) }
	})
}

func (p *parser) and() (predicate, error) {
	return p.chain(tokAnd, p.unary, func(a, b predicate) predicate {
		return func(l Lookup) bool { return a(l) && b(l) }
	})
}

// chain parses operands separated by op and folds them left to right.
func (p *parser) chain(op tokenKind, operand func() (predicate, error), join func(a, b predicate) predicate) (predicate, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		ok, err := p.accept(op)
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = join(left, right)
	}
}

func (p *parser) unary() (predicate, error) {
	ok, err := p.accept(tokNot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.primary()
	}
	inner, err := p.unary()
	if err != nil {
		return nil, err
	}
	return func(l Lookup) bool { return !inner(l) }, nil
}

func (p *parser) primary() (predicate, error) {
	switch p.tok.kind {
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, p.advance()
	case tokEOF:
		return nil, errors.New("visibility/expr: unexpected end of expression")
	case tokIdent:
	default:
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", p.tok.text)
	}

	key := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	negate := p.tok.kind == tokNeq
	if p.tok.kind != tokEq && !negate {
		return answered(key), nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	match, err := p.literal()
	if err != nil {
		return nil, err
	}
	return func(l Lookup) bool {
		value, ok := l(key)
		if !ok {
			value = answers.Unset()
		}
		return match(value) != negate
	}, nil
}

// literal consumes the right-hand side of a comparison and returns the
// matcher it stands for.
func (p *parser) literal() (func(answers.Value) bool, error) {
	tok := p.tok
	var match func(answers.Value) bool
	switch tok.kind {
	case tokEOF:
		return nil, errors.New("visibility/expr: missing literal")
	case tokString:
		match = func(v answers.Value) bool {
			s, ok := v.Str()
			return ok && s == tok.text
		}
	case tokNumber:
		want, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("visibility/expr: invalid number literal %q", tok.text)
		}
		match = func(v answers.Value) bool {
			return v.IsSet() && numeric.ParseValue(v) == want
		}
	case tokBool:
		match = func(v answers.Value) bool {
			s, ok := v.Str()
			if !ok {
				return false
			}
			got, err := strconv.ParseBool(strings.TrimSpace(s))
			return err == nil && strconv.FormatBool(got) == tok.text
		}
	case tokNull:
		match = func(v answers.Value) bool { return !v.IsSet() }
	default:
		return nil, fmt.Errorf("visibility/expr: expected literal, got %q", tok.text)
	}
	return match, p.advance()
}

// answered is the bare identifier test.
func answered(key string) predicate {
	return func(l Lookup) bool {
		value, ok := l(key)
		if !ok {
			return false
		}
		switch value.Kind() {
		case answers.KindString:
			s, _ := value.Str()
			return strings.TrimSpace(s) != ""
		case answers.KindStrings:
			list, _ := value.List()
			return len(list) > 0
		case answers.KindNumber:
			n, _ := value.Num()
			return n != 0
		default:
			return false
		}
	}
}
