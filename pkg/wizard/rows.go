// Package wizard drives the financial statement subform: a fixed chain of
// metric rows where each row is offered only once every row before it is
// complete, with one row open at a time.
package wizard

import (
	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/numeric"
)

// RowKind distinguishes typed rows from computed ones.
type RowKind string

const (
	RowInput   RowKind = "input"
	RowDerived RowKind = "derived"
)

// Row is one line of the wizard. ID is the metric key.
type Row struct {
	ID          string
	Kind        RowKind
	Explanation string
}

// ExplanationKey is the translation key for the row's help text.
func (r Row) ExplanationKey() string {
	return r.ID + " explanation"
}

var defaultExplanations = map[string]string{
	"Umsatz":                 "Jahresumsatz in CHF (ohne MwSt).",
	"Einzelgeschäftsführung": "Wird Ihr Unternehmen von genau einer Person geführt? Wählen Sie „Nein“ bei mehreren GF/Partnern.",
	"CEO-Saläre":             "Summe aller GF-Löhne pro Jahr.",
	"Abschreibungen":         "Wertminderung auf Sach- und IMM-Vermögen.",
	"EBIT":                   "Ergebnis vor Zinsen & Steuern (nach GF-Löhnen).",
	"EBIT Anpassung":         "Korrekturen für einmalige/außerordentliche Effekte.",
}

// Chain returns the rows in their fixed order for keys.
func Chain(keys finance.Keys) []Row {
	row := func(id string, kind RowKind) Row {
		return Row{ID: id, Kind: kind, Explanation: defaultExplanations[id]}
	}
	return []Row{
		row(keys.Revenue, RowInput),
		row(keys.Compensation, RowInput),
		row(keys.Depreciation, RowInput),
		row(keys.OperatingResult, RowInput),
		row(keys.Margin, RowDerived),
		row(keys.Adjustment, RowInput),
		row(keys.AdjustedResult, RowDerived),
		row(keys.CombinedResult, RowDerived),
	}
}

// Complete reports whether row has everything it needs for the selected
// periods.
func Complete(keys finance.Keys, row Row, set *answers.Set, periods []string) bool {
	if row.Kind == RowDerived {
		return true
	}
	switch row.ID {
	case keys.Compensation:
		single, _ := set.Str(keys.SingleManager)
		switch single {
		case keys.No:
			return true
		case keys.Yes:
			return allPeriods(periods, func(p string) bool {
				return numeric.Positive(set, finance.Cell(row.ID, p))
			})
		default:
			return false
		}
	case keys.Adjustment:
		return allPeriods(periods, func(p string) bool {
			return numeric.Present(set, finance.Cell(row.ID, p))
		})
	default:
		return allPeriods(periods, func(p string) bool {
			return numeric.Positive(set, finance.Cell(row.ID, p))
		})
	}
}

func allPeriods(periods []string, fn func(string) bool) bool {
	for _, p := range periods {
		if !fn(p) {
			return false
		}
	}
	return true
}

// Progress is the evaluated chain for one snapshot.
type Progress struct {
	Rows     []Row
	Complete []bool
	Eligible []bool
}

// Evaluate walks the chain in order. A row is eligible only when every row
// before it is complete; data already present for later rows does not make
// them eligible.
func Evaluate(keys finance.Keys, rows []Row, set *answers.Set, periods []string) Progress {
	p := Progress{
		Rows:     rows,
		Complete: make([]bool, len(rows)),
		Eligible: make([]bool, len(rows)),
	}
	prior := true
	for i, row := range rows {
		p.Eligible[i] = prior
		p.Complete[i] = Complete(keys, row, set, periods)
		prior = prior && p.Complete[i]
	}
	return p
}

// FirstIncomplete returns the first eligible row that is not complete.
func (p Progress) FirstIncomplete() (string, bool) {
	for i, row := range p.Rows {
		if p.Eligible[i] && !p.Complete[i] {
			return row.ID, true
		}
	}
	return "", false
}

// IsEligible reports eligibility by row ID.
func (p Progress) IsEligible(id string) bool {
	for i, row := range p.Rows {
		if row.ID == id {
			return p.Eligible[i]
		}
	}
	return false
}
