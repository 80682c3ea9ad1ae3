package render

import (
	"slices"
	"strings"

	"github.com/goliatone/go-blockform/pkg/orchestrator"
)

// HiddenField is a hidden input posted back with the form.
type HiddenField struct {
	Name  string
	Value string
}

// SessionFields carries what a posted page needs to resume its session: the
// uid and language, and the free code in free mode.
func SessionFields(id string, params orchestrator.Params, lang string) []HiddenField {
	fields := []HiddenField{{Name: "uid", Value: id}, {Name: "lang", Value: lang}}
	if code := strings.TrimSpace(params.FreeCode); code != "" {
		fields = append(fields, HiddenField{Name: "free_code", Value: code})
	}
	return fields
}

// HiddenInputs trims names, drops blank ones and keeps the last value per
// name. The result is sorted by name so pages render deterministically.
func HiddenInputs(fields ...HiddenField) []HiddenField {
	byName := make(map[string]int, len(fields))
	var out []HiddenField
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		if i, ok := byName[name]; ok {
			out[i].Value = f.Value
			continue
		}
		byName[name] = len(out)
		out = append(out, HiddenField{Name: name, Value: f.Value})
	}
	slices.SortFunc(out, func(a, b HiddenField) int { return strings.Compare(a.Name, b.Name) })
	return out
}
