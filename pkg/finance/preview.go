package finance

import (
	"math"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/numeric"
)

// PreviewRow is one line of the P&L preview.
type PreviewRow struct {
	Metric string
	Cells  []string
}

// Table is the P&L preview for a list of periods.
type Table struct {
	Periods []string
	Rows    []PreviewRow
}

// Preview builds the P&L summary shown beside the wizard: revenue, operating
// result, margin (one decimal), EBITDA, executive compensation, adjusted and
// combined result. Input rows render blank for periods without an answer;
// an empty periods list uses the configured periods.
func (e *Engine) Preview(set *answers.Set, periods []string) Table {
	if len(periods) == 0 {
		periods = e.periods
	}
	table := Table{Periods: append([]string(nil), periods...)}

	input := func(metric string) PreviewRow {
		row := PreviewRow{Metric: metric, Cells: make([]string, len(periods))}
		for i, p := range periods {
			row.Cells[i] = numeric.FormatValue(set.Lookup(Cell(metric, p)))
		}
		return row
	}
	derived := func(metric string, fn func(p string) string) PreviewRow {
		row := PreviewRow{Metric: metric, Cells: make([]string, len(periods))}
		for i, p := range periods {
			row.Cells[i] = fn(p)
		}
		return row
	}
	hasAny := func(p string, metrics ...string) bool {
		for _, m := range metrics {
			if set.Has(Cell(m, p)) {
				return true
			}
		}
		return false
	}

	k := e.keys
	table.Rows = []PreviewRow{
		input(k.Revenue),
		input(k.OperatingResult),
		derived(k.Margin, func(p string) string { return e.previewMargin(set, p) }),
		derived(k.EBITDA, func(p string) string {
			if !hasAny(p, k.OperatingResult, k.Depreciation) {
				return ""
			}
			return numeric.Format(e.EBITDA(set, p))
		}),
		input(k.Compensation),
		derived(k.AdjustedResult, func(p string) string {
			if !hasAny(p, k.OperatingResult, k.Adjustment) {
				return ""
			}
			return numeric.Format(e.AdjustedResult(set, p))
		}),
		derived(k.CombinedResult, func(p string) string {
			if !hasAny(p, k.OperatingResult, k.Adjustment, k.Compensation) {
				return ""
			}
			return numeric.Format(e.CombinedResult(set, p))
		}),
	}
	return table
}

func (e *Engine) previewMargin(set *answers.Set, period string) string {
	revenue := e.Revenue(set, period)
	if revenue <= 0 {
		return ""
	}
	pct := math.Round(e.OperatingResult(set, period)/revenue*1000) / 10
	return numeric.Format(pct) + "%"
}

// Row returns the preview row for metric.
func (t Table) Row(metric string) (PreviewRow, bool) {
	for _, row := range t.Rows {
		if row.Metric == metric {
			return row, true
		}
	}
	return PreviewRow{}, false
}
