package render_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/orchestrator"
	"github.com/goliatone/go-blockform/pkg/render"
)

type namedRenderer struct{ name string }

func (r namedRenderer) Name() string        { return r.name }
func (r namedRenderer) ContentType() string { return "text/plain" }
func (r namedRenderer) Render(context.Context, render.Session, render.RenderOptions) ([]byte, error) {
	return []byte(r.name), nil
}

type mapTranslator map[string]string

func (m mapTranslator) Translate(key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	if fallback != "" {
		return fallback
	}
	return key
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry, err := render.NewRegistry(namedRenderer{"HTML"}, namedRenderer{"tui"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if diff := cmp.Diff([]string{"html", "tui"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	got, err := registry.Get(" Html ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name() != "HTML" {
		t.Fatalf("got renderer %q", got.Name())
	}

	if err := registry.Register(namedRenderer{"html"}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := registry.Register(namedRenderer{" "}); err == nil {
		t.Fatal("expected blank name error")
	}
	_, err = registry.Get("pdf")
	if !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
	if !strings.Contains(err.Error(), "(available: html, tui)") {
		t.Fatalf("error should list renderers, got %v", err)
	}
}

func TestChrome(t *testing.T) {
	t.Parallel()

	tr := mapTranslator{render.KeySubmit: "Submit"}

	cases := []struct {
		name      string
		t         render.Translator
		key       string
		onMissing render.MissingTranslationHandler
		want      string
	}{
		{name: "translated", t: tr, key: render.KeySubmit, want: "Submit"},
		{name: "default", t: tr, key: render.KeyThankYou, want: "Vielen Dank!"},
		{name: "nil translator", key: render.KeyLoading, want: "Lade…"},
		{name: "unknown key", key: "other", want: "other"},
		{
			name: "missing handler",
			t:    tr,
			key:  render.KeySearch,
			onMissing: func(key, fallback string) string {
				return fmt.Sprintf("[%s]", key)
			},
			want: "[search]",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := render.Chrome(tc.t, tc.key, tc.onMissing); got != tc.want {
				t.Fatalf("Chrome(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestHiddenInputs(t *testing.T) {
	t.Parallel()

	fields := []render.HiddenField{{Name: " lang ", Value: "de"}, {Name: " ", Value: "x"}}
	fields = append(fields, render.SessionFields("id-1", orchestrator.Params{FreeCode: " F1 "}, "en")...)

	want := []render.HiddenField{
		{Name: "free_code", Value: "F1"},
		{Name: "lang", Value: "en"},
		{Name: "uid", Value: "id-1"},
	}
	if diff := cmp.Diff(want, render.HiddenInputs(fields...)); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}

	if got := render.SessionFields("id-2", orchestrator.Params{}, "de"); len(got) != 2 {
		t.Fatalf("free_code should be omitted when empty, got %v", got)
	}
	if got := render.HiddenInputs(); got != nil {
		t.Fatalf("expected nil without fields, got %v", got)
	}
}

func TestMapErrors(t *testing.T) {
	t.Parallel()

	fields := []orchestrator.FieldView{
		{Field: model.FieldDeclaration{Key: "name", Type: model.FieldTypeText}},
		{Field: model.FieldDeclaration{Key: "email", Type: model.FieldTypeText}},
	}
	got := render.MapErrors(fields, map[string][]string{
		"name":    {" required ", "required"},
		"hidden":  {"not shown"},
		"email":   {""},
		"unknown": {"also not shown", "not shown"},
	})

	want := render.ErrorMapping{
		Fields: map[string][]string{"name": {"required"}},
		Form:   []string{"not shown", "also not shown"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}

	if empty := render.MapErrors(fields, nil); empty.Fields != nil || empty.Form != nil {
		t.Fatalf("expected empty mapping, got %+v", empty)
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	tr := mapTranslator{"locked": "Already sent."}
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("submit: %w", orchestrator.ErrLocked), "Already sent."},
		{orchestrator.ErrInputDisabled, "Bitte zuerst die vorherigen Angaben ausfüllen."},
		{errors.New("backend down"), "Es ist ein Fehler aufgetreten."},
	}
	for _, tc := range cases {
		if got := render.Message(tr, tc.err); got != tc.want {
			t.Errorf("Message(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
