package tui

import (
	"github.com/goliatone/go-blockform/pkg/orchestrator"
)

// State tracks which fields have been asked during one pass and the
// feedback messages attached to them. Fields that become visible because of
// an earlier answer are picked up by next.
type State struct {
	asked  map[string]bool
	order  []string
	errors map[string][]string
}

// NewState seeds the state with field-level feedback.
func NewState(errs map[string][]string) *State {
	s := &State{asked: make(map[string]bool)}
	if len(errs) > 0 {
		s.errors = make(map[string][]string, len(errs))
		for key, messages := range errs {
			s.errors[key] = append([]string(nil), messages...)
		}
	}
	return s
}

// Next returns the first field in fields that has not been asked yet and
// marks it asked.
func (s *State) Next(fields []orchestrator.FieldView) (orchestrator.FieldView, bool) {
	for _, field := range fields {
		key := field.Field.Key
		if s.asked[key] {
			continue
		}
		s.asked[key] = true
		s.order = append(s.order, key)
		return field, true
	}
	return orchestrator.FieldView{}, false
}

// Asked returns the keys in the order they were asked.
func (s *State) Asked() []string {
	return append([]string(nil), s.order...)
}

// ErrorsFor returns the feedback attached to key.
func (s *State) ErrorsFor(key string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[key]
}
