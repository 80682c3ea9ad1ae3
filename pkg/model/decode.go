package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawDeclaration mirrors the loosely typed backend record.
type rawDeclaration struct {
	Key          string `json:"key" yaml:"key"`
	Type         string `json:"type" yaml:"type"`
	Text         string `json:"text" yaml:"text"`
	Options      any    `json:"options" yaml:"options"`
	VisibleIf    string `json:"Visible If" yaml:"Visible If"`
	UpdateMode   string `json:"Update Mode" yaml:"Update Mode"`
	FreeMode     string `json:"Free Mode" yaml:"Free Mode"`
	IndustryTags any    `json:"Industry Tags" yaml:"Industry Tags"`
}

func (r rawDeclaration) declaration() FieldDeclaration {
	return FieldDeclaration{
		Key:          strings.TrimSpace(r.Key),
		Type:         ParseFieldType(r.Type),
		Text:         r.Text,
		Options:      stringList(r.Options),
		VisibleIf:    strings.TrimSpace(r.VisibleIf),
		UpdateMode:   ParseUpdateDirective(r.UpdateMode),
		FreeMode:     ParseFreeDirective(r.FreeMode),
		IndustryTags: stringList(r.IndustryTags),
	}
}

// UnmarshalJSON decodes a backend record, normalising loose columns.
func (d *FieldDeclaration) UnmarshalJSON(data []byte) error {
	var raw rawDeclaration
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: decode declaration: %w", err)
	}
	*d = raw.declaration()
	return nil
}

// UnmarshalYAML decodes a declaration written in YAML.
func (d *FieldDeclaration) UnmarshalYAML(node *yaml.Node) error {
	var raw rawDeclaration
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("model: decode declaration: %w", err)
	}
	*d = raw.declaration()
	return nil
}

// DecodeJSON parses a JSON array of declarations.
func DecodeJSON(data []byte) ([]FieldDeclaration, error) {
	var out []FieldDeclaration
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("model: decode declarations: %w", err)
	}
	return out, nil
}

// DecodeYAML parses a YAML sequence of declarations.
func DecodeYAML(data []byte) ([]FieldDeclaration, error) {
	var out []FieldDeclaration
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("model: decode declarations: %w", err)
	}
	return out, nil
}

func stringList(raw any) []string {
	var items []string
	switch typed := raw.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil
		}
		items = strings.Split(typed, ",")
	case []any:
		for _, item := range typed {
			if item == nil {
				continue
			}
			items = append(items, fmt.Sprint(item))
		}
	case []string:
		items = typed
	default:
		items = []string{fmt.Sprint(typed)}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
