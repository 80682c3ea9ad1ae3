// Package finance computes the derived figures of the financial statement
// wizard. Every derived value is recomputed from an answers.Set on read and
// is never stored; the only write-side rule is the operating result clamp
// applied by Engine.Write.
package finance

import "strings"

// Keys names the metrics of the statement. Per-period answers live under
// "<metric> <period>", e.g. "Umsatz 2023".
type Keys struct {
	Revenue         string `json:"revenue" yaml:"revenue"`
	Compensation    string `json:"compensation" yaml:"compensation"`
	SingleManager   string `json:"single_manager" yaml:"single_manager"`
	Depreciation    string `json:"depreciation" yaml:"depreciation"`
	OperatingResult string `json:"operating_result" yaml:"operating_result"`
	Margin          string `json:"margin" yaml:"margin"`
	Adjustment      string `json:"adjustment" yaml:"adjustment"`
	AdjustedResult  string `json:"adjusted_result" yaml:"adjusted_result"`
	CombinedResult  string `json:"combined_result" yaml:"combined_result"`
	EBITDA          string `json:"ebitda" yaml:"ebitda"`
	Periods         string `json:"periods" yaml:"periods"`
	Yes             string `json:"yes" yaml:"yes"`
	No              string `json:"no" yaml:"no"`
}

// DefaultKeys returns the sheet names used by the questionnaire backend.
func DefaultKeys() Keys {
	return Keys{
		Revenue:         "Umsatz",
		Compensation:    "CEO-Saläre",
		SingleManager:   "Einzelgeschäftsführung",
		Depreciation:    "Abschreibungen",
		OperatingResult: "EBIT",
		Margin:          "EBIT-Marge",
		Adjustment:      "EBIT Anpassung",
		AdjustedResult:  "EBIT angepasst",
		CombinedResult:  "EBITC",
		EBITDA:          "EBITDA",
		Periods:         "Finance Years",
		Yes:             "Ja",
		No:              "Nein",
	}
}

// withDefaults fills blank names from DefaultKeys.
func (k Keys) withDefaults() Keys {
	d := DefaultKeys()
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&k.Revenue, d.Revenue)
	fill(&k.Compensation, d.Compensation)
	fill(&k.SingleManager, d.SingleManager)
	fill(&k.Depreciation, d.Depreciation)
	fill(&k.OperatingResult, d.OperatingResult)
	fill(&k.Margin, d.Margin)
	fill(&k.Adjustment, d.Adjustment)
	fill(&k.AdjustedResult, d.AdjustedResult)
	fill(&k.CombinedResult, d.CombinedResult)
	fill(&k.EBITDA, d.EBITDA)
	fill(&k.Periods, d.Periods)
	fill(&k.Yes, d.Yes)
	fill(&k.No, d.No)
	return k
}

// Cell returns the answer key for metric in period.
func Cell(metric, period string) string {
	return metric + " " + period
}

// Inputs lists the metrics whose cells the respondent types in, in wizard
// order.
func (k Keys) Inputs() []string {
	return []string{k.Revenue, k.Compensation, k.Depreciation, k.OperatingResult, k.Adjustment}
}

// DefaultPeriods returns the reporting periods offered by default.
func DefaultPeriods() []string {
	return []string{"2023", "2024", "2025"}
}
