package model

import "fmt"

// Form is the ordered list of declarations for one session.
type Form struct {
	Fields []FieldDeclaration
}

// NewForm copies the declarations so later edits to the input slice do not
// leak into the session.
func NewForm(fields []FieldDeclaration) Form {
	out := make([]FieldDeclaration, len(fields))
	for i, field := range fields {
		field.Options = append([]string(nil), field.Options...)
		field.IndustryTags = append([]string(nil), field.IndustryTags...)
		out[i] = field
	}
	return Form{Fields: out}
}

// Validate reports duplicate keys. Blank keys are allowed; they are skipped
// at render time.
func (f Form) Validate() error {
	seen := make(map[string]struct{}, len(f.Fields))
	for _, field := range f.Fields {
		if !field.HasKey() {
			continue
		}
		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("model: duplicate field key %q", field.Key)
		}
		seen[field.Key] = struct{}{}
	}
	return nil
}

// Field returns the declaration with the given key.
func (f Form) Field(key string) (FieldDeclaration, bool) {
	for _, field := range f.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return FieldDeclaration{}, false
}

// FirstOfType returns the first declaration of the given type.
func (f Form) FirstOfType(t FieldType) (FieldDeclaration, bool) {
	for _, field := range f.Fields {
		if field.Type == t && field.HasKey() {
			return field, true
		}
	}
	return FieldDeclaration{}, false
}
