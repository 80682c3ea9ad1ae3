package model

import "strings"

// FieldType enumerates the supported questionnaire widgets.
type FieldType string

const (
	FieldTypeText            FieldType = "text"
	FieldTypeInput           FieldType = "input"
	FieldTypeSelect          FieldType = "select"
	FieldTypeRadio           FieldType = "radio"
	FieldTypeCheckbox        FieldType = "checkbox"
	FieldTypeNumber          FieldType = "number"
	FieldTypeCountry         FieldType = "country"
	FieldTypeRegion          FieldType = "region"
	FieldTypeIndustries      FieldType = "industries"
	FieldTypeStars           FieldType = "stars"
	FieldTypeFinancialWizard FieldType = "financial-wizard"
	FieldTypeRadioWithOther  FieldType = "radio-with-other"
)

var knownTypes = map[FieldType]struct{}{
	FieldTypeText:            {},
	FieldTypeInput:           {},
	FieldTypeSelect:          {},
	FieldTypeRadio:           {},
	FieldTypeCheckbox:        {},
	FieldTypeNumber:          {},
	FieldTypeCountry:         {},
	FieldTypeRegion:          {},
	FieldTypeIndustries:      {},
	FieldTypeStars:           {},
	FieldTypeFinancialWizard: {},
	FieldTypeRadioWithOther:  {},
}

// ParseFieldType maps raw sheet values onto a FieldType. Unknown or blank
// values fall back to FieldTypeInput, matching how the form treats a block
// without a recognised type.
func ParseFieldType(raw string) FieldType {
	t := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownTypes[t]; ok {
		return t
	}
	return FieldTypeInput
}

// Known reports whether t is one of the declared field types.
func (t FieldType) Known() bool {
	_, ok := knownTypes[t]
	return ok
}

// Optioned reports whether the widget chooses from a list of options. Such
// fields are skipped when they end up with no options to offer.
func (t FieldType) Optioned() bool {
	switch t {
	case FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox, FieldTypeRegion, FieldTypeRadioWithOther:
		return true
	default:
		return false
	}
}

// MultiValued reports whether answers for this type are string arrays.
func (t FieldType) MultiValued() bool {
	return t == FieldTypeCheckbox
}

// ModeDirective restricts a field to one side of a mode axis.
type ModeDirective string

const (
	ModeAlways       ModeDirective = ""
	ModeOnlyInUpdate ModeDirective = "only in update mode"
	ModeHideInUpdate ModeDirective = "hide in update mode"
	ModeOnlyInFree   ModeDirective = "only in free mode"
	ModeHideInFree   ModeDirective = "hide in free mode"
)

// ParseUpdateDirective normalises the `Update Mode` column. Anything that is
// not an update directive means "always".
func ParseUpdateDirective(raw string) ModeDirective {
	switch d := ModeDirective(strings.ToLower(strings.TrimSpace(raw))); d {
	case ModeOnlyInUpdate, ModeHideInUpdate:
		return d
	default:
		return ModeAlways
	}
}

// ParseFreeDirective normalises the `Free Mode` column.
func ParseFreeDirective(raw string) ModeDirective {
	switch d := ModeDirective(strings.ToLower(strings.TrimSpace(raw))); d {
	case ModeOnlyInFree, ModeHideInFree:
		return d
	default:
		return ModeAlways
	}
}

// FieldDeclaration is one questionnaire item.
type FieldDeclaration struct {
	Key          string        `json:"key" yaml:"key"`
	Type         FieldType     `json:"type" yaml:"type"`
	Text         string        `json:"text,omitempty" yaml:"text,omitempty"`
	Options      []string      `json:"options,omitempty" yaml:"options,omitempty"`
	VisibleIf    string        `json:"Visible If,omitempty" yaml:"Visible If,omitempty"`
	UpdateMode   ModeDirective `json:"Update Mode,omitempty" yaml:"Update Mode,omitempty"`
	FreeMode     ModeDirective `json:"Free Mode,omitempty" yaml:"Free Mode,omitempty"`
	IndustryTags []string      `json:"Industry Tags,omitempty" yaml:"Industry Tags,omitempty"`
}

// HasKey reports whether the declaration carries a usable key.
func (d FieldDeclaration) HasKey() bool {
	return strings.TrimSpace(d.Key) != ""
}

// Label returns the fallback display text, defaulting to the key.
func (d FieldDeclaration) Label() string {
	if text := strings.TrimSpace(d.Text); text != "" {
		return text
	}
	return d.Key
}

// TagGated reports whether the field is restricted to certain industries.
func (d FieldDeclaration) TagGated() bool {
	return len(d.IndustryTags) > 0
}
