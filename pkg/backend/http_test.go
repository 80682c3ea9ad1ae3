package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/model"
)

type fakeScript struct {
	mu        sync.Mutex
	jsonp     bool
	submitted [][]byte
	status    int
}

func (f *fakeScript) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if r.Method == http.MethodPost {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.submitted = append(f.submitted, body)
		status := f.status
		f.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
		}
		w.Write([]byte("<html>moved</html>"))
		return
	}

	switch {
	case q.Get("blocks") == "true":
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"key":"country","type":"country"},{"key":"vat","type":"input","Visible If":"country == \"DE\"","options":"a, b"}]`))
	case q.Get("translations") == "true":
		w.Write([]byte(`{"de":{"submit":"Absenden"},"en":{"submit":"Submit"}}`))
	case q.Get("industries") == "true":
		w.Write([]byte(`[{"label":"Handel","children":[{"code":"47","label":"Einzelhandel","tags":"retail"}]}]`))
	case q.Get("uid") != "":
		if q.Get("uid") == "unknown" {
			w.Write([]byte(`{}`))
			return
		}
		if f.jsonp && q.Get("callback") == "" {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>redirect</html>"))
			return
		}
		payload := `{"answers":{"country":"DE","Branchen":"Ja, Nein"}}`
		if cb := q.Get("callback"); cb != "" {
			w.Header().Set("Content-Type", "application/javascript")
			w.Write([]byte(cb + "(" + payload + ");"))
			return
		}
		w.Write([]byte(payload))
	default:
		http.NotFound(w, r)
	}
}

func newClient(t *testing.T, script *fakeScript) *HTTP {
	t.Helper()
	server := httptest.NewServer(script)
	t.Cleanup(server.Close)
	client, err := NewHTTP(server.URL+"/exec", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewHTTP returned error: %v", err)
	}
	return client
}

func TestHTTPResources(t *testing.T) {
	t.Parallel()

	client := newClient(t, &fakeScript{})
	ctx := context.Background()

	blocks, err := client.Blocks(ctx)
	if err != nil {
		t.Fatalf("Blocks returned error: %v", err)
	}
	if len(blocks) != 2 || blocks[1].VisibleIf != `country == "DE"` || blocks[0].Type != model.FieldTypeCountry {
		t.Fatalf("unexpected blocks %+v", blocks)
	}
	if diff := cmp.Diff([]string{"a", "b"}, blocks[1].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	catalog, err := client.Translations(ctx)
	if err != nil {
		t.Fatalf("Translations returned error: %v", err)
	}
	if catalog.For("en")["submit"] != "Submit" {
		t.Fatalf("unexpected catalog %v", catalog)
	}

	tree, err := client.Industries(ctx)
	if err != nil {
		t.Fatalf("Industries returned error: %v", err)
	}
	if len(tree) != 1 || tree[0].Children[0].Tags[0] != "retail" {
		t.Fatalf("unexpected tree %+v", tree)
	}
}

func TestHTTPPrefillJSON(t *testing.T) {
	t.Parallel()

	client := newClient(t, &fakeScript{})
	prefill, err := client.Prefill(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Prefill returned error: %v", err)
	}
	want := map[string]any{"country": "DE", "Branchen": "Ja, Nein"}
	if diff := cmp.Diff(want, prefill.Answers); diff != "" {
		t.Fatalf("prefill mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPPrefillFallsBackToJSONP(t *testing.T) {
	t.Parallel()

	client := newClient(t, &fakeScript{jsonp: true})
	prefill, err := client.Prefill(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Prefill returned error: %v", err)
	}
	if prefill.Answers["country"] != "DE" {
		t.Fatalf("unexpected prefill %+v", prefill)
	}
}

func TestHTTPPrefillMissing(t *testing.T) {
	t.Parallel()

	client := newClient(t, &fakeScript{})
	if _, err := client.Prefill(context.Background(), "unknown"); !errors.Is(err, ErrNoPrefill) {
		t.Fatalf("expected ErrNoPrefill, got %v", err)
	}
	if _, err := client.Prefill(context.Background(), " "); !errors.Is(err, ErrNoPrefill) {
		t.Fatalf("expected ErrNoPrefill for blank uid, got %v", err)
	}
}

func TestHTTPSubmitIgnoresResponse(t *testing.T) {
	t.Parallel()

	script := &fakeScript{status: http.StatusInternalServerError}
	client := newClient(t, script)

	submission := Submission{
		UUID:       "3f2c",
		Lang:       "de",
		Link:       "https://form.example/?uid=3f2c",
		UpdateMode: true,
		Answers:    answers.NewSet(map[string]answers.Value{"country": answers.String("DE"), "Branchen": answers.Strings("Ja", "Nein")}),
	}
	if err := client.Submit(context.Background(), submission); err != nil {
		t.Fatalf("Submit returned error for opaque response: %v", err)
	}

	script.mu.Lock()
	defer script.mu.Unlock()
	if len(script.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(script.submitted))
	}
	var got map[string]any
	if err := json.Unmarshal(script.submitted[0], &got); err != nil {
		t.Fatalf("submission is not JSON: %v", err)
	}
	want := map[string]any{
		"uuid":       "3f2c",
		"lang":       "de",
		"link":       "https://form.example/?uid=3f2c",
		"freeCode":   "",
		"updateMode": "yes",
		"freeMode":   "no",
		"answers":    map[string]any{"Branchen": []any{"Ja", "Nein"}, "country": "DE"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSubmitTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client, err := NewHTTP(base)
	if err != nil {
		t.Fatalf("NewHTTP returned error: %v", err)
	}
	if err := client.Submit(context.Background(), Submission{UUID: "x"}); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestUnwrapJSONP(t *testing.T) {
	t.Parallel()

	body, err := UnwrapJSONP([]byte(`/**/ handlePrefill({"answers":{}});`), "handlePrefill")
	if err != nil || string(body) != `{"answers":{}}` {
		t.Fatalf("UnwrapJSONP = %q, %v", body, err)
	}
	if _, err := UnwrapJSONP([]byte(`other({})`), "handlePrefill"); err == nil {
		t.Fatalf("expected callback mismatch error")
	}
	if _, err := UnwrapJSONP([]byte(`{"answers":{}}`), ""); err == nil {
		t.Fatalf("expected error for plain JSON")
	}
}

func TestNewHTTPRejectsBadBase(t *testing.T) {
	t.Parallel()

	if _, err := NewHTTP("not a url"); err == nil {
		t.Fatalf("expected error")
	}
}
