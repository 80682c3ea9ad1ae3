// Package backend describes the remote questionnaire service: field
// declarations, translations, the industry taxonomy, prefill records, and the
// submission endpoint.
package backend

import (
	"context"
	"errors"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/i18n"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
)

// ErrNoPrefill is returned when no prior submission exists for an id.
var ErrNoPrefill = errors.New("backend: no prefill for session")

// Client is the backend contract consumed by the orchestrator.
type Client interface {
	Blocks(ctx context.Context) ([]model.FieldDeclaration, error)
	Translations(ctx context.Context) (i18n.Catalog, error)
	Industries(ctx context.Context) (taxonomy.Tree, error)
	Prefill(ctx context.Context, uid string) (Prefill, error)
	// Submit dispatches the payload. Implementations report transport
	// failures only; the response body and status are opaque.
	Submit(ctx context.Context, submission Submission) error
}

// Prefill is a previously submitted answer set as returned by the backend.
// Values are raw JSON values; the orchestrator normalizes them.
type Prefill struct {
	Answers map[string]any `json:"answers"`
}

// Flag is the "yes"/"no" encoding used for mode flags in submissions.
type Flag bool

// MarshalText implements encoding.TextMarshaler.
func (f Flag) MarshalText() ([]byte, error) {
	if f {
		return []byte("yes"), nil
	}
	return []byte("no"), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Flag) UnmarshalText(text []byte) error {
	switch string(text) {
	case "yes", "true":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Submission is the payload posted on submit.
type Submission struct {
	UUID       string       `json:"uuid"`
	Lang       string       `json:"lang"`
	Link       string       `json:"link"`
	FreeCode   string       `json:"freeCode"`
	UpdateMode Flag         `json:"updateMode"`
	FreeMode   Flag         `json:"freeMode"`
	Answers    *answers.Set `json:"answers"`
}
