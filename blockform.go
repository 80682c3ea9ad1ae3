// Package blockform is the top-level entry point: it opens a backend, starts
// a questionnaire session, and renders it.
//
//	client, _ := blockform.NewFileBackend("./data")
//	session, err := blockform.Start(ctx, client, blockform.ParseParams(r.URL.Query()))
//	page, err := blockform.RenderHTML(ctx, session, blockform.RenderOptions{Action: "/form"})
package blockform

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/internal/backend/filebackend"
	"github.com/goliatone/go-blockform/pkg/backend"
	"github.com/goliatone/go-blockform/pkg/orchestrator"
	"github.com/goliatone/go-blockform/pkg/render"
	"github.com/goliatone/go-blockform/pkg/renderers/html"
	"github.com/goliatone/go-blockform/pkg/renderers/tui"
)

// Session aliases orchestrator.Session.
type Session = orchestrator.Session

// Params aliases orchestrator.Params.
type Params = orchestrator.Params

// Option aliases orchestrator.Option.
type Option = orchestrator.Option

// RenderOptions describes per-request data for renderers: form action,
// hidden fields and server-side feedback.
type RenderOptions = render.RenderOptions

// ParseParams reads the session inputs from a query string.
func ParseParams(values url.Values) Params {
	return orchestrator.ParseParams(values)
}

// NewFileBackend serves blocks, translations, industries and prefill data
// from dir and writes submissions back to it.
func NewFileBackend(dir string, logger *zap.Logger) (backend.Client, error) {
	return filebackend.New(dir, filebackend.WithLogger(logger))
}

// NewFileBackendFS serves the same layout from a read-only fs.FS.
func NewFileBackendFS(files fs.FS, logger *zap.Logger) backend.Client {
	return filebackend.NewFS(files, filebackend.WithLogger(logger))
}

// NewHTTPBackend talks to the remote form service at base.
func NewHTTPBackend(base string, options ...backend.HTTPOption) (backend.Client, error) {
	return backend.NewHTTP(base, options...)
}

// Start creates a session and runs its initial fetch. A failed start leaves
// the session in the error state and returns the cause.
func Start(ctx context.Context, client backend.Client, params Params, options ...Option) (*Session, error) {
	if client == nil {
		return nil, fmt.Errorf("blockform: backend client is required")
	}
	session := orchestrator.New(client, params, options...)
	if err := session.Start(ctx); err != nil {
		return session, err
	}
	return session, nil
}

// NewRenderers registers the built-in renderers: "html" and "tui".
func NewRenderers(tuiOptions ...tui.Option) (*render.Registry, error) {
	page, err := html.New()
	if err != nil {
		return nil, err
	}
	terminal, err := tui.New(tuiOptions...)
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(page, terminal)
}

// RenderHTML renders the session as an HTML snapshot with the embedded
// templates.
func RenderHTML(ctx context.Context, session render.Session, opts RenderOptions) ([]byte, error) {
	page, err := html.New()
	if err != nil {
		return nil, err
	}
	return page.Render(ctx, session, opts)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or extend them and pass the result to html.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
