// Package tui drives a questionnaire session through terminal prompts. Each
// visible field is asked once, in declared order; fields revealed by an
// answer are asked when the walk reaches them. The financial wizard is
// walked row by row along its dependency chain.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/numeric"
	"github.com/goliatone/go-blockform/pkg/orchestrator"
	"github.com/goliatone/go-blockform/pkg/render"
	"github.com/goliatone/go-blockform/pkg/wizard"
)

const (
	pageSize  = 12
	starCount = 5
)

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver         PromptDriver
	out            io.Writer
	outputFormat   OutputFormat
	theme          Theme
	languagePrompt bool
	confirmSubmit  bool
	logger         *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out, r.theme)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render asks every visible field, submits, and returns the collected
// answers. A session that is already submitted only prints the thank-you
// message and its edit link.
func (r *Renderer) Render(ctx context.Context, session render.Session, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if session == nil {
		return nil, errors.New("tui: session is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view := session.View()
	switch view.Status {
	case orchestrator.StatusLoading:
		return nil, ErrNotReady
	case orchestrator.StatusError:
		if view.Err != nil {
			return nil, fmt.Errorf("tui: session failed: %w", view.Err)
		}
		return nil, ErrNotReady
	case orchestrator.StatusSubmitted:
		if err := r.thankYou(ctx, session, opts); err != nil {
			return nil, err
		}
		return r.serialize(session)
	}

	if r.languagePrompt && len(view.Languages) > 1 {
		if err := r.promptLanguage(ctx, session, view); err != nil {
			return nil, err
		}
		view = session.View()
	}

	mapping := render.MapErrors(view.Fields, opts.Errors)
	for _, msg := range mapping.Form {
		r.errorf(ctx, "%s", msg)
	}

	state := NewState(mapping.Fields)
	for {
		field, ok := state.Next(session.View().Fields)
		if !ok {
			break
		}
		for _, msg := range state.ErrorsFor(field.Field.Key) {
			r.errorf(ctx, "%s: %s", field.Label, msg)
		}
		if err := r.promptField(ctx, session, field); err != nil {
			return nil, err
		}
	}
	r.logger.Debug("questionnaire walked", zap.Strings("asked", state.Asked()))

	submit := true
	if r.confirmSubmit {
		var err error
		submit, err = r.driver.Confirm(ctx, ConfirmConfig{
			Message: render.Chrome(session, render.KeySubmit, opts.OnMissing) + "?",
			Default: true,
		})
		if err != nil {
			return nil, err
		}
	}
	if submit {
		if err := session.Submit(ctx); err != nil {
			r.errorf(ctx, "%s", render.Message(session, err))
			return nil, fmt.Errorf("tui: submit: %w", err)
		}
		if session.View().Status == orchestrator.StatusSubmitted {
			if err := r.thankYou(ctx, session, opts); err != nil {
				return nil, err
			}
		}
	}
	return r.serialize(session)
}

func (r *Renderer) promptField(ctx context.Context, session render.Session, field orchestrator.FieldView) error {
	switch field.Field.Type {
	case model.FieldTypeFinancialWizard:
		return r.promptWizard(ctx, session, field.Field.Key)
	case model.FieldTypeIndustries:
		return r.promptIndustry(ctx, session, field)
	case model.FieldTypeCheckbox:
		return r.promptMulti(ctx, session, field)
	case model.FieldTypeSelect, model.FieldTypeRadio, model.FieldTypeCountry, model.FieldTypeRegion:
		return r.promptChoice(ctx, session, field)
	case model.FieldTypeRadioWithOther:
		return r.promptChoiceWithOther(ctx, session, field)
	case model.FieldTypeStars:
		return r.promptStars(ctx, session, field)
	case model.FieldTypeNumber:
		return r.promptNumber(ctx, session, field)
	case model.FieldTypeText:
		current, _ := field.Answer.Str()
		resp, err := r.driver.TextArea(ctx, TextAreaConfig{Message: field.Label, Default: current})
		if err != nil {
			return err
		}
		return r.keepOrSet(session, field, resp)
	default:
		current, _ := field.Answer.Str()
		resp, err := r.driver.Input(ctx, InputConfig{Message: field.Label, Default: current})
		if err != nil {
			return err
		}
		return r.keepOrSet(session, field, resp)
	}
}

// keepOrSet stores a text response. An empty response leaves an unanswered
// field unanswered.
func (r *Renderer) keepOrSet(session render.Session, field orchestrator.FieldView, resp string) error {
	if resp == "" && !field.Answer.IsSet() {
		return nil
	}
	return r.apply(session, field.Field.Key, answers.String(resp))
}

func (r *Renderer) promptChoice(ctx context.Context, session render.Session, field orchestrator.FieldView) error {
	labels := choiceLabels(field.Choices)
	current, _ := field.Answer.Str()
	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      labels,
			DefaultIndex: choiceIndex(field.Choices, current),
			PageSize:     pageSize,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(field.Choices) {
			r.errorf(ctx, "Invalid %s selection", field.Label)
			continue
		}
		return r.apply(session, field.Field.Key, answers.String(field.Choices[idx].Value))
	}
}

func (r *Renderer) promptChoiceWithOther(ctx context.Context, session render.Session, field orchestrator.FieldView) error {
	other := render.Label(session, "other", "Andere")
	labels := append(choiceLabels(field.Choices), other)
	current, _ := field.Answer.Str()

	defaultIdx := choiceIndex(field.Choices, current)
	if defaultIdx < 0 && current != "" {
		defaultIdx = len(field.Choices)
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      labels,
			DefaultIndex: defaultIdx,
			PageSize:     pageSize,
		})
		if err != nil {
			return err
		}
		switch {
		case idx >= 0 && idx < len(field.Choices):
			return r.apply(session, field.Field.Key, answers.String(field.Choices[idx].Value))
		case idx == len(field.Choices):
			seed := ""
			if choiceIndex(field.Choices, current) < 0 {
				seed = current
			}
			text, err := r.driver.Input(ctx, InputConfig{Message: other, Default: seed})
			if err != nil {
				return err
			}
			return r.apply(session, field.Field.Key, answers.String(strings.TrimSpace(text)))
		default:
			r.errorf(ctx, "Invalid %s selection", field.Label)
		}
	}
}

func (r *Renderer) promptMulti(ctx context.Context, session render.Session, field orchestrator.FieldView) error {
	labels := choiceLabels(field.Choices)
	var defaults []int
	for i, c := range field.Choices {
		if field.Answer.Contains(c.Value) {
			defaults = append(defaults, i)
		}
	}
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  field.Label,
		Options:  labels,
		Defaults: defaults,
		PageSize: pageSize,
	})
	if err != nil {
		return err
	}
	values := []string{}
	for _, idx := range indices {
		if idx >= 0 && idx < len(field.Choices) {
			values = append(values, field.Choices[idx].Value)
		}
	}
	return r.apply(session, field.Field.Key, answers.Strings(values...))
}

// promptStars offers a 1 to 5 rating unless the declaration lists its own
// options.
func (r *Renderer) promptStars(ctx context.Context, session render.Session, field orchestrator.FieldView) error {
	if len(field.Choices) > 0 {
		return r.promptChoice(ctx, session, field)
	}
	choices := make([]orchestrator.Choice, starCount)
	for i := range choices {
		n := strconv.Itoa(i + 1)
		choices[i] = orchestrator.Choice{Value: n, Label: strings.Repeat("★", i+1)}
	}
	field.Choices = choices
	return r.promptChoice(ctx, session, field)
}

func (r *Renderer) promptNumber(ctx context.Context, session render.Session, field orchestrator.FieldView) error {
	resp, err := r.driver.Input(ctx, InputConfig{
		Message:   field.Label,
		Default:   field.Answer.Text(),
		Validator: validateFigure,
	})
	if err != nil {
		return err
	}
	return r.keepOrSet(session, field, numeric.Sanitize(resp))
}

// validateFigure accepts empty input and anything carrying at least one
// digit once separators are stripped.
func validateFigure(input string) error {
	if strings.TrimSpace(input) != "" && numeric.Sanitize(input) == "" {
		return errors.New("enter a number")
	}
	return nil
}

// promptIndustry walks the taxonomy one level at a time until a leaf is
// chosen. Branches on the path to the current answer are preselected.
func (r *Renderer) promptIndustry(ctx context.Context, session render.Session, field orchestrator.FieldView) error {
	current, _ := field.Answer.Str()
	nodes := field.Industries
	var trail []string
	for {
		labels := make([]string, len(nodes))
		defaultIdx := -1
		for i, node := range nodes {
			labels[i] = render.Label(session, node.Label, node.Label)
			if (node.IsLeaf() && node.Code == current) || (!node.IsLeaf() && field.Expanded[node.Label]) {
				defaultIdx = i
			}
		}
		message := field.Label
		if len(trail) > 0 {
			message += " (" + strings.Join(trail, " › ") + ")"
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: defaultIdx,
			PageSize:     pageSize,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(nodes) {
			r.errorf(ctx, "Invalid %s selection", field.Label)
			continue
		}
		node := nodes[idx]
		if node.IsLeaf() {
			return r.apply(session, field.Field.Key, answers.String(node.Code))
		}
		trail = append(trail, labels[idx])
		nodes = node.Children
	}
}

func (r *Renderer) promptLanguage(ctx context.Context, session render.Session, view orchestrator.View) error {
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      render.Label(session, "language", "Sprache"),
		Options:      view.Languages,
		DefaultIndex: optionIndex(view.Languages, view.Lang),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(view.Languages) || view.Languages[idx] == view.Lang {
		return nil
	}
	if err := session.SetLanguage(ctx, view.Languages[idx]); err != nil {
		return fmt.Errorf("tui: set language: %w", err)
	}
	return nil
}

func (r *Renderer) thankYou(ctx context.Context, session render.Session, opts render.RenderOptions) error {
	if err := r.info(ctx, render.Chrome(session, render.KeyThankYou, opts.OnMissing)); err != nil {
		return err
	}
	if link := session.View().Link; link != "" {
		return r.info(ctx, link)
	}
	return nil
}

// apply writes one answer. Writes the session refuses for a disabled input
// are reported and skipped.
func (r *Renderer) apply(session render.Session, key string, value answers.Value) error {
	if _, err := session.SetAnswer(key, value); err != nil {
		if errors.Is(err, orchestrator.ErrInputDisabled) {
			r.logger.Debug("skipped disabled input", zap.String("key", key))
			return nil
		}
		return fmt.Errorf("tui: set %q: %w", key, err)
	}
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) errorf(ctx context.Context, format string, args ...any) {
	_ = r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

type output struct {
	Status  orchestrator.Status `json:"status"`
	Link    string              `json:"link,omitempty"`
	Answers *answers.Set        `json:"answers"`
}

func (r *Renderer) serialize(session render.Session) ([]byte, error) {
	view := session.View()
	set := session.Answers()
	if r.outputFormat == OutputFormatPrettyText {
		var b strings.Builder
		for _, key := range set.Keys() {
			fmt.Fprintf(&b, "%s: %s\n", key, set.Lookup(key).Text())
		}
		if view.Link != "" {
			fmt.Fprintf(&b, "\n%s\n", view.Link)
		}
		return []byte(b.String()), nil
	}
	out, err := json.Marshal(output{Status: view.Status, Link: view.Link, Answers: set})
	if err != nil {
		return nil, fmt.Errorf("tui: encode answers: %w", err)
	}
	return out, nil
}

func choiceLabels(choices []orchestrator.Choice) []string {
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}
	return labels
}

func choiceIndex(choices []orchestrator.Choice, value string) int {
	if value == "" {
		return -1
	}
	for i, c := range choices {
		if c.Value == value {
			return i
		}
	}
	return -1
}

// findField locates key among the currently visible fields.
func findField(fields []orchestrator.FieldView, key string) (orchestrator.FieldView, bool) {
	for _, f := range fields {
		if f.Field.Key == key {
			return f, true
		}
	}
	return orchestrator.FieldView{}, false
}

func findRow(rows []wizard.RowView, id string) (wizard.RowView, bool) {
	for _, row := range rows {
		if row.ID == id {
			return row, true
		}
	}
	return wizard.RowView{}, false
}

func previewLines(session render.Session, table *finance.Table) []string {
	if table == nil || len(table.Periods) == 0 {
		return nil
	}
	lines := []string{strings.Join(append([]string{""}, table.Periods...), "\t")}
	for _, row := range table.Rows {
		cells := append([]string{render.Label(session, row.Metric, row.Metric)}, row.Cells...)
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return lines
}
