package finance

import (
	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/numeric"
)

// Write stores value under key and returns the new snapshot. Typed wizard
// cells are passed through numeric.Sanitize. The stored operating result of
// a period never exceeds its revenue: writing a larger operating result, or
// lowering or clearing the revenue below a stored one, stores the revenue
// in its place, formatted. Other keys are stored unchanged.
func (e *Engine) Write(set *answers.Set, key string, value answers.Value) *answers.Set {
	metric, period, ok := e.SplitCell(key)
	if !ok {
		return set.With(key, value)
	}

	var next *answers.Set
	raw, isString := value.Str()
	switch {
	case !isString && !value.IsSet():
		next = set.Without(key)
	default:
		if !isString {
			raw = numeric.FormatValue(value)
		}
		next = set.With(key, answers.String(numeric.Sanitize(raw)))
	}

	switch metric {
	case e.keys.OperatingResult, e.keys.Revenue:
		return e.clamp(next, period)
	default:
		return next
	}
}

// clamp caps a stored operating result for period at the period's revenue.
func (e *Engine) clamp(set *answers.Set, period string) *answers.Set {
	cell := Cell(e.keys.OperatingResult, period)
	if !set.Has(cell) || e.clamped(set, period) {
		return set
	}
	return set.With(cell, answers.String(numeric.Format(e.Revenue(set, period))))
}

// clamped reports whether the stored operating result for period respects
// the revenue bound.
func (e *Engine) clamped(set *answers.Set, period string) bool {
	return e.OperatingResult(set, period) <= e.Revenue(set, period)
}
