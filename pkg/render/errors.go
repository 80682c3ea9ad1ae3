package render

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-blockform/pkg/orchestrator"
)

// ErrorMapping splits server feedback into messages shown next to a field and
// messages shown above the form.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrors attaches messages to the visible fields they name. Messages for
// hidden or unknown keys are shown at form level, in key order.
func MapErrors(fields []orchestrator.FieldView, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	visible := make(map[string]bool, len(fields))
	for _, f := range fields {
		visible[f.Field.Key] = true
	}

	var form []string
	for _, raw := range slices.Sorted(maps.Keys(payload)) {
		messages := dedupe(payload[raw])
		if len(messages) == 0 {
			continue
		}
		key := strings.TrimSpace(raw)
		if !visible[key] {
			form = append(form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[key] = append(mapping.Fields[key], messages...)
	}
	mapping.Form = dedupe(form)
	return mapping
}

// Message turns a session error into respondent-facing text.
func Message(t Translator, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, orchestrator.ErrLocked):
		return Label(t, "locked", "Die Angaben wurden bereits gesendet.")
	case errors.Is(err, orchestrator.ErrInputDisabled):
		return Label(t, "inputDisabled", "Bitte zuerst die vorherigen Angaben ausfüllen.")
	default:
		return Label(t, "error", "Es ist ein Fehler aufgetreten.")
	}
}

// dedupe trims messages and drops blanks and repeats, keeping first
// occurrence order. It returns nil when nothing is left.
func dedupe(messages []string) []string {
	var out []string
	for _, m := range messages {
		m = strings.TrimSpace(m)
		if m != "" && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}
