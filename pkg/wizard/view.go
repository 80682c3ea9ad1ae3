package wizard

import (
	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/numeric"
)

// Cell is one period column of a row.
type Cell struct {
	Period   string
	Key      string
	Selected bool
	Enabled  bool
	// Value is the formatted stored figure for inputs, or the computed
	// figure for derived rows.
	Value string
}

// Question is the inline yes/no prompt shown inside the compensation row.
type Question struct {
	Key            string
	Options        []string
	Answer         string
	Explanation    string
	ExplanationKey string
}

// RowView is the presentation of one row.
type RowView struct {
	Row
	Eligible      bool
	Complete      bool
	Open          bool
	InputsEnabled bool
	Cells         []Cell
	Question      *Question
}

// View renders the chain for set. Only eligible rows are returned, in order.
func (c *Controller) View(set *answers.Set) []RowView {
	progress := c.Progress(set)
	periods := c.engine.Periods()

	var out []RowView
	for i, row := range progress.Rows {
		if !progress.Eligible[i] {
			continue
		}
		view := RowView{
			Row:      row,
			Eligible: true,
			Complete: progress.Complete[i],
			Open:     c.state.IsOpen(row.ID),
		}
		if row.Kind == RowInput {
			view.InputsEnabled = c.rowInputsEnabled(row.ID, set)
		}

		view.Cells = make([]Cell, len(periods))
		for j, p := range periods {
			cell := Cell{Period: p, Key: finance.Cell(row.ID, p), Selected: c.state.IsSelected(p)}
			if cell.Selected {
				switch {
				case row.Kind == RowDerived:
					cell.Value = c.engine.Derived(set, row.ID, p)
				case view.InputsEnabled:
					cell.Enabled = true
					cell.Value = numeric.FormatValue(set.Lookup(cell.Key))
				}
			}
			view.Cells[j] = cell
		}

		if row.ID == c.keys.Compensation {
			answer, _ := set.Str(c.keys.SingleManager)
			view.Question = &Question{
				Key:            c.keys.SingleManager,
				Options:        []string{c.keys.Yes, c.keys.No},
				Answer:         answer,
				Explanation:    defaultExplanations[c.keys.SingleManager],
				ExplanationKey: c.keys.SingleManager + " explanation",
			}
		}
		out = append(out, view)
	}
	return out
}
