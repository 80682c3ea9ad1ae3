package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

// lexer scans one token per call to next.
type lexer struct {
	src string
	pos int
}

// operators holds the two-character operators.
var operators = map[string]tokenKind{"==": tokEq, "!=": tokNeq, "&&": tokAnd, "||": tokOr}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF}, nil
	}

	if l.pos+2 <= len(l.src) {
		if kind, ok := operators[l.src[l.pos:l.pos+2]]; ok {
			text := l.src[l.pos : l.pos+2]
			l.pos += 2
			return token{kind: kind, text: text}, nil
		}
	}

	c := l.src[l.pos]
	switch c {
	case '(':
		l.pos++
		return token{kind: tokLParen, text: "("}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, text: ")"}, nil
	case '!':
		l.pos++
		return token{kind: tokNot, text: "!"}, nil
	case '=', '&', '|':
		return token{}, fmt.Errorf("visibility/expr: unexpected '%c'; use '%c%c'", c, c, c)
	case '`':
		return l.quotedIdent()
	case '"', '\'':
		return l.stringLiteral()
	}
	return l.word(), nil
}

// quotedIdent reads a backtick identifier, which may contain spaces.
func (l *lexer) quotedIdent() (token, error) {
	end := strings.IndexByte(l.src[l.pos+1:], '`')
	if end < 0 {
		return token{}, errors.New("visibility/expr: unterminated quoted identifier")
	}
	name := strings.TrimSpace(l.src[l.pos+1 : l.pos+1+end])
	if name == "" {
		return token{}, errors.New("visibility/expr: empty quoted identifier")
	}
	l.pos += end + 2
	return token{kind: tokIdent, text: name}, nil
}

// stringLiteral reads a single or double quoted string with Go escapes.
func (l *lexer) stringLiteral() (token, error) {
	quote := l.src[l.pos]
	for i := l.pos + 1; i < len(l.src); i++ {
		switch l.src[i] {
		case '\\':
			i++
		case quote:
			body := l.src[l.pos+1 : i]
			if quote == '\'' {
				body = strings.NewReplacer(`\'`, `'`, `"`, `\"`).Replace(body)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return token{}, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			l.pos = i + 1
			return token{kind: tokString, text: value}, nil
		}
	}
	return token{}, errors.New("visibility/expr: unterminated string literal")
}

// word reads a bare run up to the next delimiter and classifies it as a
// keyword, number or identifier.
func (l *lexer) word() token {
	start := l.pos
	for l.pos < len(l.src) && !isDelimiter(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	switch lower := strings.ToLower(text); lower {
	case "true", "false":
		return token{kind: tokBool, text: lower}
	case "null", "nil":
		return token{kind: tokNull, text: "null"}
	}
	if strings.IndexByte("0123456789+-", text[0]) >= 0 {
		return token{kind: tokNumber, text: text}
	}
	return token{kind: tokIdent, text: text}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	return isSpace(c) || strings.IndexByte("()!=&|\"'`", c) >= 0
}
