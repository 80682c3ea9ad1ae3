package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/numeric"
	"github.com/goliatone/go-blockform/pkg/render"
	"github.com/goliatone/go-blockform/pkg/wizard"
)

// promptWizard asks for the reporting periods, then walks the rows in chain
// order. A row left incomplete is asked again, since later rows only open
// once it is complete.
func (r *Renderer) promptWizard(ctx context.Context, session render.Session, key string) error {
	if err := r.promptPeriods(ctx, session, key); err != nil {
		return err
	}

	done := make(map[string]bool)
	for {
		field, ok := findField(session.View().Fields, key)
		if !ok {
			return nil
		}
		row, ok := nextRow(field.Rows, done)
		if !ok {
			break
		}
		done[row.ID] = true

		label := render.Label(session, row.ID, row.ID)
		if row.Kind == wizard.RowDerived {
			if err := r.info(ctx, derivedLine(label, row)); err != nil {
				return err
			}
			continue
		}

		if _, err := session.FocusRow(row.ID); err != nil && !errors.Is(err, wizard.ErrNotEligible) {
			return fmt.Errorf("tui: focus %q: %w", row.ID, err)
		}
		if err := r.promptRow(ctx, session, key, row, label); err != nil {
			return err
		}

		field, _ = findField(session.View().Fields, key)
		if updated, ok := findRow(field.Rows, row.ID); ok && !updated.Complete {
			r.errorf(ctx, "%s: %s", label, render.Label(session, "incomplete", "Bitte für jedes gewählte Jahr ausfüllen."))
			delete(done, row.ID)
		}
	}

	field, ok := findField(session.View().Fields, key)
	if !ok {
		return nil
	}
	for _, line := range previewLines(session, field.Preview) {
		if err := r.info(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptPeriods(ctx context.Context, session render.Session, key string) error {
	field, ok := findField(session.View().Fields, key)
	if !ok || len(field.Rows) == 0 {
		return nil
	}
	var periods []string
	for _, cell := range field.Rows[0].Cells {
		periods = append(periods, cell.Period)
	}

	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  render.Label(session, "Finance Years", "Geschäftsjahre"),
		Options:  periods,
		Defaults: optionIndices(periods, field.State.SelectedPeriods),
	})
	if err != nil {
		return err
	}
	chosen := make(map[string]bool, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(periods) {
			chosen[periods[idx]] = true
		}
	}
	for _, p := range periods {
		if chosen[p] == field.State.IsSelected(p) {
			continue
		}
		if _, err := session.TogglePeriod(p); err != nil {
			return fmt.Errorf("tui: toggle period %q: %w", p, err)
		}
	}
	return nil
}

// promptRow asks the inline question of a row, then one input per enabled
// period cell.
func (r *Renderer) promptRow(ctx context.Context, session render.Session, key string, row wizard.RowView, label string) error {
	help := render.Label(session, row.ExplanationKey(), row.Explanation)

	if q := row.Question; q != nil {
		options := make([]string, len(q.Options))
		for i, opt := range q.Options {
			options[i] = render.Label(session, opt, opt)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      render.Label(session, q.Key, q.Key),
			Options:      options,
			DefaultIndex: optionIndex(q.Options, q.Answer),
			Help:         render.Label(session, q.ExplanationKey, q.Explanation),
		})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(q.Options) {
			if err := r.apply(session, q.Key, answers.String(q.Options[idx])); err != nil {
				return err
			}
		}
		field, ok := findField(session.View().Fields, key)
		if !ok {
			return nil
		}
		if row, ok = findRow(field.Rows, row.ID); !ok {
			return nil
		}
	}

	if !row.InputsEnabled {
		return nil
	}
	for _, cell := range row.Cells {
		if !cell.Enabled {
			continue
		}
		resp, err := r.driver.Input(ctx, InputConfig{
			Message: label + " " + cell.Period,
			Default: cell.Value,
			Help:    help,
		})
		if err != nil {
			return err
		}
		sanitized := numeric.Sanitize(resp)
		if sanitized == "" && cell.Value == "" {
			continue
		}
		r.logger.Debug("wizard cell", zap.String("key", cell.Key), zap.String("value", sanitized))
		if err := r.apply(session, cell.Key, answers.String(sanitized)); err != nil {
			return err
		}
	}
	return nil
}

// nextRow is the first row not yet handled in this walk.
func nextRow(rows []wizard.RowView, done map[string]bool) (wizard.RowView, bool) {
	for _, row := range rows {
		if !done[row.ID] {
			return row, true
		}
	}
	return wizard.RowView{}, false
}

func derivedLine(label string, row wizard.RowView) string {
	var parts []string
	for _, cell := range row.Cells {
		if !cell.Selected {
			continue
		}
		parts = append(parts, cell.Period+": "+cell.Value)
	}
	return label + " " + strings.Join(parts, ", ")
}
