// Package render defines the host contract for questionnaire front ends: a
// Renderer turns a running session into output (an HTML page, a terminal
// dialogue), and a Registry makes renderers discoverable by name.
package render

import (
	"context"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/orchestrator"
	"github.com/goliatone/go-blockform/pkg/wizard"
)

// Session is the part of *orchestrator.Session a renderer drives.
type Session interface {
	View() orchestrator.View
	Answers() *answers.Set
	Translate(key, fallback string) string
	SetAnswer(key string, value answers.Value) (*answers.Set, error)
	TogglePeriod(period string) (wizard.State, error)
	FocusRow(row string) (wizard.State, error)
	SetLanguage(ctx context.Context, lang string) error
	Submit(ctx context.Context) error
}

var _ Session = (*orchestrator.Session)(nil)

// Renderer presents a session. Static renderers only read View; interactive
// ones also write answers and submit.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, session Session, options RenderOptions) ([]byte, error)
}
