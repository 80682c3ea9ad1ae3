package visibility

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/visibility/expr"
)

// ErrEmptyLiteral is the error of the Unparseable a `key == ""` rule
// compiles to.
var ErrEmptyLiteral = errors.New("visibility: empty comparison literal")

// Condition is a compiled visibility predicate.
type Condition interface {
	Eval(set *answers.Set, ctx Context) bool
	String() string
}

// Always is the condition of a field without directives.
type Always struct{}

func (Always) Eval(*answers.Set, Context) bool { return true }
func (Always) String() string { return "always" }

// Equals matches when the string answer for Key is exactly Literal. Absent,
// multi-value and numeric answers never match.
type Equals struct {
	Key     string
	Literal string
}

func (c Equals) Eval(set *answers.Set, _ Context) bool {
	got, ok := set.Str(c.Key)
	return ok && got == c.Literal
}

func (c Equals) String() string { return fmt.Sprintf("%s == %q", c.Key, c.Literal) }

// Axis names a mode flag.
type Axis string

const (
	AxisUpdate Axis = "update"
	AxisFree   Axis = "free"
)

// Mode applies an only-in/hide-in directive to one axis.
type Mode struct {
	Axis      Axis
	Directive model.ModeDirective
}

func (c Mode) Eval(_ *answers.Set, ctx Context) bool {
	active := ctx.UpdateMode
	if c.Axis == AxisFree {
		active = ctx.FreeMode
	}
	switch c.Directive {
	case model.ModeOnlyInUpdate, model.ModeOnlyInFree:
		return active
	case model.ModeHideInUpdate, model.ModeHideInFree:
		return !active
	default:
		return true
	}
}

func (c Mode) String() string { return fmt.Sprintf("%s: %s", c.Axis, c.Directive) }

// Tags requires the chosen taxonomy leaf to share at least one tag.
type Tags struct {
	Tags []string
}

func (c Tags) Eval(_ *answers.Set, ctx Context) bool {
	if !ctx.LeafSelected {
		return false
	}
	for _, want := range c.Tags {
		for _, have := range ctx.LeafTags {
			if want == have {
				return true
			}
		}
	}
	return false
}

func (c Tags) String() string { return "tags(" + strings.Join(c.Tags, ",") + ")" }

// Expression wraps a compound rule compiled by the expr package.
type Expression struct {
	Raw     string
	Program *expr.Program
}

func (c Expression) Eval(set *answers.Set, _ Context) bool {
	return c.Program.Eval(set.Get)
}

func (c Expression) String() string { return c.Raw }

// Unparseable marks a rule that could not be compiled. It evaluates to true so
// a malformed sheet entry never hides a question.
type Unparseable struct {
	Raw string
	Err error
}

func (Unparseable) Eval(*answers.Set, Context) bool { return true }
func (c Unparseable) String() string { return "unparseable(" + c.Raw + ")" }

// All is the conjunction of its members. An empty All is true.
type All []Condition

func (c All) Eval(set *answers.Set, ctx Context) bool {
	for _, member := range c {
		if !member.Eval(set, ctx) {
			return false
		}
	}
	return true
}

func (c All) String() string {
	parts := make([]string, len(c))
	for i, member := range c {
		parts[i] = member.String()
	}
	return strings.Join(parts, " && ")
}

// ParseRule compiles a `Visible If` string. A blank rule is Always; a single
// `key == "literal"` comparison (key may contain spaces) becomes Equals;
// anything else is tried as a compound expression and, failing that, becomes
// Unparseable.
func ParseRule(raw string) Condition {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Always{}
	}
	if cond, ok := parseEquality(trimmed); ok {
		return cond
	}
	program, err := expr.Compile(trimmed)
	if err != nil {
		return Unparseable{Raw: trimmed, Err: err}
	}
	return Expression{Raw: trimmed, Program: program}
}

// parseEquality recognizes a single `key == "literal"` rule. It reports false
// for anything else, leaving it to the expression compiler.
func parseEquality(rule string) (Condition, bool) {
	idx := strings.Index(rule, "==")
	if idx <= 0 {
		return nil, false
	}
	key := strings.TrimSpace(rule[:idx])
	rest := strings.TrimSpace(rule[idx+2:])
	if key == "" || strings.ContainsAny(key, "\"'!=&|()") {
		return nil, false
	}
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return nil, false
	}
	literal := rest[1 : len(rest)-1]
	if strings.Contains(literal, `"`) {
		return nil, false
	}
	if literal == "" {
		return Unparseable{Raw: rule, Err: ErrEmptyLiteral}, true
	}
	return Equals{Key: key, Literal: literal}, true
}
