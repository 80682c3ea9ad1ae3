package visibility

import (
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/model"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger routes compile and evaluation diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Evaluator compiles declarations into conditions and evaluates them. Rule
// strings are compiled once and cached.
type Evaluator struct {
	logger *zap.Logger

	mu    sync.Mutex
	rules map[string]Condition
}

// New constructs an Evaluator.
func New(options ...Option) *Evaluator {
	e := &Evaluator{
		logger: zap.NewNop(),
		rules:  make(map[string]Condition),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Compiled pairs a declaration with its condition tree.
type Compiled struct {
	Field     model.FieldDeclaration
	Condition Condition
}

// Compile builds the condition tree for one declaration.
func (e *Evaluator) Compile(field model.FieldDeclaration) Condition {
	var all All
	if field.UpdateMode != model.ModeAlways {
		all = append(all, Mode{Axis: AxisUpdate, Directive: field.UpdateMode})
	}
	if field.FreeMode != model.ModeAlways {
		all = append(all, Mode{Axis: AxisFree, Directive: field.FreeMode})
	}
	if field.VisibleIf != "" {
		rule := e.rule(field.Key, field.VisibleIf)
		if _, always := rule.(Always); !always {
			all = append(all, rule)
		}
	}
	if field.TagGated() {
		all = append(all, Tags{Tags: append([]string(nil), field.IndustryTags...)})
	}

	switch len(all) {
	case 0:
		return Always{}
	case 1:
		return all[0]
	default:
		return all
	}
}

// CompileForm compiles every declaration, preserving order.
func (e *Evaluator) CompileForm(form model.Form) []Compiled {
	out := make([]Compiled, 0, len(form.Fields))
	for _, field := range form.Fields {
		out = append(out, Compiled{Field: field, Condition: e.Compile(field)})
	}
	return out
}

// IsVisible reports whether field is shown for set and ctx.
func (e *Evaluator) IsVisible(field model.FieldDeclaration, set *answers.Set, ctx Context) bool {
	cond := e.Compile(field)
	visible := cond.Eval(set, ctx)
	if visible && hasUnparseable(cond) {
		e.logger.Debug("visibility rule unparseable, showing field",
			zap.String("field", field.Key),
			zap.String("rule", field.VisibleIf))
	}
	return visible
}

// Filter returns the compiled fields visible for set and ctx in declared
// order.
func (e *Evaluator) Filter(fields []Compiled, set *answers.Set, ctx Context) []Compiled {
	out := make([]Compiled, 0, len(fields))
	for _, field := range fields {
		if field.Condition == nil || field.Condition.Eval(set, ctx) {
			out = append(out, field)
		}
	}
	return out
}

func (e *Evaluator) rule(fieldKey, raw string) Condition {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cached, ok := e.rules[raw]; ok {
		return cached
	}
	rule := ParseRule(raw)
	if bad, ok := rule.(Unparseable); ok {
		e.logger.Warn("visibility rule could not be parsed; field stays visible",
			zap.String("field", fieldKey),
			zap.String("rule", raw),
			zap.Error(bad.Err))
	}
	e.rules[raw] = rule
	return rule
}

func hasUnparseable(cond Condition) bool {
	switch typed := cond.(type) {
	case Unparseable:
		return true
	case All:
		for _, member := range typed {
			if hasUnparseable(member) {
				return true
			}
		}
	}
	return false
}
