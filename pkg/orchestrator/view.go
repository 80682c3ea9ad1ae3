package orchestrator

import (
	"strings"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/geo"
	"github.com/goliatone/go-blockform/pkg/i18n"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
	"github.com/goliatone/go-blockform/pkg/wizard"
)

// Choice is one selectable option. Value is stored, Label is shown.
type Choice struct {
	Value string
	Label string
}

// FieldView is a visible field prepared for a renderer.
type FieldView struct {
	Field  model.FieldDeclaration
	Label  string
	Answer answers.Value
	// Choices holds options, countries, or regions depending on the type.
	Choices []Choice
	// Industries and Expanded are set for industries fields.
	Industries taxonomy.Tree
	Expanded   map[string]bool
	// Rows and Preview are set for the financial wizard.
	Rows    []wizard.RowView
	State   wizard.State
	Preview *finance.Table
}

// View is a complete snapshot of what the session shows.
type View struct {
	Status    Status
	Lang      string
	Languages []string
	Fields    []FieldView
	// Link is the thank-you edit link once submitted.
	Link string
	Err  error
}

// Visible returns the rendered fields in declared order: blank keys are
// dropped, visibility rules applied, and option fields with nothing to offer
// skipped.
func (s *Session) Visible() []FieldView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible(s.store.Snapshot())
}

// View returns the full presentation snapshot.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := View{
		Status:    s.status,
		Lang:      s.lang,
		Languages: s.bundle.Catalog().Languages(),
		Err:       s.err,
	}
	switch s.status {
	case StatusReady, StatusSubmitting:
		view.Fields = s.visible(s.store.Snapshot())
	case StatusSubmitted:
		view.Link = s.submittedLink()
	}
	return view
}

func (s *Session) visible(set *answers.Set) []FieldView {
	var out []FieldView
	for _, c := range s.evaluator.Filter(s.compiled, set, s.visibilityContext(set)) {
		field := c.Field
		if !field.HasKey() {
			continue
		}
		view := FieldView{
			Field:  field,
			Label:  i18n.Text(s.bundle, s.lang, field.Key, field.Label()),
			Answer: set.Lookup(field.Key),
		}
		if !s.populate(&view, set) {
			continue
		}
		out = append(out, view)
	}
	return out
}

// populate fills type specific data and reports whether the field has
// something to offer.
func (s *Session) populate(view *FieldView, set *answers.Set) bool {
	field := view.Field
	switch field.Type {
	case model.FieldTypeCountry:
		for _, c := range geo.Countries(s.lang, i18n.DefaultLanguage) {
			view.Choices = append(view.Choices, Choice{Value: c.Code, Label: c.Name})
		}
	case model.FieldTypeRegion:
		for _, region := range geo.Regions(s.regionCountry(set)) {
			view.Choices = append(view.Choices, Choice{Value: region, Label: region})
		}
	case model.FieldTypeIndustries:
		view.Industries = s.index.Tree()
		if len(view.Industries) == 0 {
			return false
		}
		code, _ := view.Answer.Str()
		view.Expanded = s.index.ExpandedLabels(code)
	case model.FieldTypeFinancialWizard:
		view.Rows = s.wizard.View(set)
		view.State = s.wizard.State()
		table := s.engine.Preview(set, view.State.SelectedPeriods)
		view.Preview = &table
	default:
		for _, opt := range field.Options {
			view.Choices = append(view.Choices, Choice{
				Value: opt,
				Label: i18n.Text(s.bundle, s.lang, opt, opt),
			})
		}
	}
	if field.Type.Optioned() && len(view.Choices) == 0 {
		return false
	}
	return true
}

// regionCountry is the answer of the first country field.
func (s *Session) regionCountry(set *answers.Set) string {
	field, ok := s.form.FirstOfType(model.FieldTypeCountry)
	if !ok {
		return ""
	}
	code, _ := set.Str(field.Key)
	return geo.NormalizeCode(strings.TrimSpace(code))
}
