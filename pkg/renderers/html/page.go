package html

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/orchestrator"
	"github.com/goliatone/go-blockform/pkg/render"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
	"github.com/goliatone/go-blockform/pkg/wizard"
)

// page is the template data. Text fields documented as markup are already
// sanitized and rendered with |safe; everything else is escaped.
type page struct {
	Lang       string     `json:"lang"`
	Languages  []language `json:"languages"`
	Status     string     `json:"status"`
	Action     string     `json:"action"`
	Loading    string     `json:"loading"`
	Submit     string     `json:"submit"`
	ThankYou   string     `json:"thank_you"`
	Link       string     `json:"link"`
	Error      string     `json:"error"`
	FormErrors []string   `json:"form_errors"`
	Inputs     []hidden   `json:"hidden"`
	Fields     []field    `json:"fields"`
}

type language struct {
	Code    string `json:"code"`
	Current bool   `json:"current"`
}

type hidden struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type choice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type field struct {
	Key    string   `json:"key"`
	Type   string   `json:"type"`
	Label  string   `json:"label"`
	Value  string   `json:"value"`
	Errors []string `json:"errors"`

	Choices []choice `json:"choices"`
	// Other is the free text of a radio-with-other answer that matches no
	// option.
	Other      string `json:"other"`
	OtherLabel string `json:"other_label"`

	Tree   []treeItem  `json:"tree"`
	Wizard *wizardView `json:"wizard"`
}

// treeItem flattens the taxonomy for the template: a branch item opens a
// group that a later close item ends.
type treeItem struct {
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Code     string `json:"code"`
	Open     bool   `json:"open"`
	Selected bool   `json:"selected"`
}

type wizardView struct {
	PeriodsLabel string       `json:"periods_label"`
	Periods      []choice     `json:"periods"`
	Rows         []wizardRow  `json:"rows"`
	Preview      *previewView `json:"preview"`
}

type wizardRow struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Explanation string    `json:"explanation"`
	Derived     bool      `json:"derived"`
	Open        bool      `json:"open"`
	Complete    bool      `json:"complete"`
	Inputs      []cell    `json:"cells"`
	Question    *question `json:"question"`
}

type cell struct {
	Period   string `json:"period"`
	Key      string `json:"key"`
	Value    string `json:"value"`
	Enabled  bool   `json:"enabled"`
	Selected bool   `json:"selected"`
}

type question struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Explanation string   `json:"explanation"`
	Options     []choice `json:"options"`
}

type previewView struct {
	Periods []string     `json:"periods"`
	Rows    []previewRow `json:"rows"`
}

type previewRow struct {
	Label string   `json:"label"`
	Cells []string `json:"cells"`
}

func buildPage(session render.Session, view orchestrator.View, opts render.RenderOptions) page {
	p := page{
		Lang:     view.Lang,
		Status:   string(view.Status),
		Action:   opts.Action,
		Loading:  sanitizeText(render.Chrome(session, render.KeyLoading, opts.OnMissing)),
		Submit:   sanitizeText(render.Chrome(session, render.KeySubmit, opts.OnMissing)),
		ThankYou: sanitizeText(render.Chrome(session, render.KeyThankYou, opts.OnMissing)),
		Link:     view.Link,
	}
	for _, code := range view.Languages {
		p.Languages = append(p.Languages, language{Code: code, Current: code == view.Lang})
	}
	for _, h := range render.HiddenInputs(opts.Hidden...) {
		p.Inputs = append(p.Inputs, hidden{Name: h.Name, Value: h.Value})
	}
	if view.Status == orchestrator.StatusError {
		p.Error = render.Message(session, view.Err)
	}

	mapping := render.MapErrors(view.Fields, opts.Errors)
	p.FormErrors = mapping.Form
	for _, fv := range view.Fields {
		p.Fields = append(p.Fields, buildField(session, fv, mapping.Fields[fv.Field.Key]))
	}
	return p
}

func buildField(session render.Session, fv orchestrator.FieldView, errs []string) field {
	current, _ := fv.Answer.Str()
	f := field{
		Key:    fv.Field.Key,
		Type:   string(fv.Field.Type),
		Label:  sanitizeText(fv.Label),
		Value:  fv.Answer.Text(),
		Errors: errs,
	}

	switch fv.Field.Type {
	case model.FieldTypeCheckbox:
		for _, c := range fv.Choices {
			f.Choices = append(f.Choices, choice{Value: c.Value, Label: sanitizeText(c.Label), Selected: fv.Answer.Contains(c.Value)})
		}
	case model.FieldTypeStars:
		choices := fv.Choices
		if len(choices) == 0 {
			for i := 1; i <= 5; i++ {
				choices = append(choices, orchestrator.Choice{Value: strconv.Itoa(i), Label: strings.Repeat("★", i)})
			}
		}
		f.Choices = selectChoices(choices, current)
	case model.FieldTypeRadioWithOther:
		f.Choices = selectChoices(fv.Choices, current)
		f.OtherLabel = sanitizeText(render.Label(session, "other", "Andere"))
		if current != "" && !anySelected(f.Choices) {
			f.Other = current
		}
	case model.FieldTypeIndustries:
		f.Tree = flattenTree(session, fv.Industries, fv.Expanded, current)
	case model.FieldTypeFinancialWizard:
		f.Wizard = buildWizard(session, fv)
	default:
		f.Choices = selectChoices(fv.Choices, current)
	}
	return f
}

func selectChoices(choices []orchestrator.Choice, current string) []choice {
	var out []choice
	for _, c := range choices {
		out = append(out, choice{Value: c.Value, Label: sanitizeText(c.Label), Selected: current != "" && c.Value == current})
	}
	return out
}

func anySelected(choices []choice) bool {
	for _, c := range choices {
		if c.Selected {
			return true
		}
	}
	return false
}

func flattenTree(session render.Session, nodes taxonomy.Tree, expanded map[string]bool, current string) []treeItem {
	var out []treeItem
	var walk func(nodes []taxonomy.Node)
	walk = func(nodes []taxonomy.Node) {
		for _, n := range nodes {
			label := sanitizeText(render.Label(session, n.Label, n.Label))
			if n.IsLeaf() {
				out = append(out, treeItem{Kind: "leaf", Label: label, Code: n.Code, Selected: current != "" && n.Code == current})
				continue
			}
			out = append(out, treeItem{Kind: "branch", Label: label, Open: expanded[n.Label]})
			walk(n.Children)
			out = append(out, treeItem{Kind: "close"})
		}
	}
	walk(nodes)
	return out
}

func buildWizard(session render.Session, fv orchestrator.FieldView) *wizardView {
	w := &wizardView{PeriodsLabel: sanitizeText(render.Label(session, "Finance Years", "Geschäftsjahre"))}
	if len(fv.Rows) > 0 {
		for _, c := range fv.Rows[0].Cells {
			w.Periods = append(w.Periods, choice{Value: c.Period, Label: c.Period, Selected: fv.State.IsSelected(c.Period)})
		}
	}

	for _, rv := range fv.Rows {
		row := wizardRow{
			ID:          rv.ID,
			Label:       sanitizeText(render.Label(session, rv.ID, rv.ID)),
			Explanation: sanitizeText(render.Label(session, rv.ExplanationKey(), rv.Explanation)),
			Derived:     rv.Kind == wizard.RowDerived,
			Open:        rv.Open,
			Complete:    rv.Complete,
		}
		for _, c := range rv.Cells {
			row.Inputs = append(row.Inputs, cell{Period: c.Period, Key: c.Key, Value: c.Value, Enabled: c.Enabled, Selected: c.Selected})
		}
		if q := rv.Question; q != nil {
			qv := &question{
				Key:         q.Key,
				Label:       sanitizeText(render.Label(session, q.Key, q.Key)),
				Explanation: sanitizeText(render.Label(session, q.ExplanationKey, q.Explanation)),
			}
			for _, opt := range q.Options {
				qv.Options = append(qv.Options, choice{Value: opt, Label: sanitizeText(render.Label(session, opt, opt)), Selected: q.Answer == opt})
			}
			row.Question = qv
		}
		w.Rows = append(w.Rows, row)
	}

	w.Preview = buildPreview(session, fv.Preview)
	return w
}

func buildPreview(session render.Session, table *finance.Table) *previewView {
	if table == nil || len(table.Periods) == 0 {
		return nil
	}
	pv := &previewView{Periods: table.Periods}
	for _, row := range table.Rows {
		pv.Rows = append(pv.Rows, previewRow{Label: sanitizeText(render.Label(session, row.Metric, row.Metric)), Cells: row.Cells})
	}
	return pv
}
