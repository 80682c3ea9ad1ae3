package finance

import (
	"math"
	"strings"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/numeric"
)

// Option configures an Engine.
type Option func(*Engine)

// WithKeys overrides the metric names. Blank names keep their defaults.
func WithKeys(keys Keys) Option {
	return func(e *Engine) {
		e.keys = keys.withDefaults()
	}
}

// WithPeriods overrides the reporting periods. An empty list is ignored.
func WithPeriods(periods ...string) Option {
	return func(e *Engine) {
		var cleaned []string
		seen := make(map[string]struct{}, len(periods))
		for _, p := range periods {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			cleaned = append(cleaned, p)
		}
		if len(cleaned) > 0 {
			e.periods = cleaned
		}
	}
}

// Engine evaluates derived metrics for a fixed set of keys and periods. It
// holds no answer state and is safe for concurrent use.
type Engine struct {
	keys    Keys
	periods []string
	inputs  map[string]struct{}
}

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{
		keys:    DefaultKeys(),
		periods: DefaultPeriods(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	e.inputs = make(map[string]struct{})
	for _, metric := range e.keys.Inputs() {
		e.inputs[metric] = struct{}{}
	}
	return e
}

// Keys returns the configured metric names.
func (e *Engine) Keys() Keys {
	return e.keys
}

// Periods returns the configured periods in declared order.
func (e *Engine) Periods() []string {
	return append([]string(nil), e.periods...)
}

// HasPeriod reports whether period is configured.
func (e *Engine) HasPeriod(period string) bool {
	for _, p := range e.periods {
		if p == period {
			return true
		}
	}
	return false
}

// SplitCell resolves an answer key into metric and period. It only matches
// input metrics over configured periods.
func (e *Engine) SplitCell(key string) (metric, period string, ok bool) {
	idx := strings.LastIndexByte(key, ' ')
	if idx <= 0 || idx == len(key)-1 {
		return "", "", false
	}
	metric, period = key[:idx], key[idx+1:]
	if _, known := e.inputs[metric]; !known || !e.HasPeriod(period) {
		return "", "", false
	}
	return metric, period, true
}

// IsNumericCell reports whether key holds a typed wizard figure. Prefill
// ingestion uses it to keep decimal commas intact.
func (e *Engine) IsNumericCell(key string) bool {
	_, _, ok := e.SplitCell(key)
	return ok
}

func (e *Engine) value(set *answers.Set, metric, period string) float64 {
	return numeric.ParseValue(set.Lookup(Cell(metric, period)))
}

// Revenue returns the parsed revenue for period.
func (e *Engine) Revenue(set *answers.Set, period string) float64 {
	return e.value(set, e.keys.Revenue, period)
}

// OperatingResult returns the parsed operating result for period.
func (e *Engine) OperatingResult(set *answers.Set, period string) float64 {
	return e.value(set, e.keys.OperatingResult, period)
}

// Margin returns round(operatingResult / revenue * 100) followed by "%", or
// "" when revenue is not positive.
func (e *Engine) Margin(set *answers.Set, period string) string {
	revenue := e.Revenue(set, period)
	if revenue <= 0 {
		return ""
	}
	pct := roundHalfUp(e.OperatingResult(set, period) / revenue * 100)
	return numeric.Format(pct) + "%"
}

// AdjustedResult is operatingResult + adjustment, absent values counting as 0.
func (e *Engine) AdjustedResult(set *answers.Set, period string) float64 {
	return e.OperatingResult(set, period) + e.value(set, e.keys.Adjustment, period)
}

// CombinedResult is AdjustedResult + executive compensation.
func (e *Engine) CombinedResult(set *answers.Set, period string) float64 {
	return e.AdjustedResult(set, period) + e.value(set, e.keys.Compensation, period)
}

// EBITDA is operatingResult + depreciation.
func (e *Engine) EBITDA(set *answers.Set, period string) float64 {
	return e.OperatingResult(set, period) + e.value(set, e.keys.Depreciation, period)
}

// Derived renders the display value of a derived metric for period. Unknown
// metrics render "".
func (e *Engine) Derived(set *answers.Set, metric, period string) string {
	switch metric {
	case e.keys.Margin:
		return e.Margin(set, period)
	case e.keys.AdjustedResult:
		return numeric.Format(e.AdjustedResult(set, period))
	case e.keys.CombinedResult:
		return numeric.Format(e.CombinedResult(set, period))
	case e.keys.EBITDA:
		return numeric.Format(e.EBITDA(set, period))
	default:
		return ""
	}
}

// roundHalfUp rounds halves towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
