// Package testsupport builds questionnaire fixtures for tests: an in-memory
// file backend and started sessions on top of it.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"path"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-blockform/internal/backend/filebackend"
	"github.com/goliatone/go-blockform/pkg/orchestrator"
)

// Link is the form URL used by fixture sessions.
const Link = "https://example.test/form"

// Files describes the documents served by a fixture backend. Empty
// Translations and Industries default to an empty catalog and tree; an empty
// Blocks leaves blocks.yaml out so the session fails to start.
type Files struct {
	Blocks       string
	Translations string
	Industries   string
	// Prefill maps a uid to its prefill/<uid>.json document.
	Prefill map[string]string
}

// FS returns the fixture as a map file system in the file backend layout.
func (f Files) FS() fstest.MapFS {
	fsys := fstest.MapFS{
		"translations.yaml": file(orDefault(f.Translations, "{}")),
		"industries.yaml":   file(orDefault(f.Industries, "[]")),
	}
	if f.Blocks != "" {
		fsys["blocks.yaml"] = file(f.Blocks)
	}
	for uid, doc := range f.Prefill {
		fsys[path.Join("prefill", uid+".json")] = file(doc)
	}
	return fsys
}

func file(data string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(data)}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Start creates a session over files with the fixture link and runs its
// initial fetch. The start error is returned for error-state tests.
func Start(t *testing.T, files fstest.MapFS, params orchestrator.Params, options ...orchestrator.Option) (*orchestrator.Session, error) {
	t.Helper()
	options = append([]orchestrator.Option{orchestrator.WithLink(Link)}, options...)
	session := orchestrator.New(filebackend.NewFS(files), params, options...)
	return session, session.Start(Context())
}

// MustStart is Start failing the test on a start error.
func MustStart(t *testing.T, files fstest.MapFS, params orchestrator.Params, options ...orchestrator.Option) *orchestrator.Session {
	t.Helper()
	session, err := Start(t, files, params, options...)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return session
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
