package orchestrator

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"go.uber.org/goleak"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/backend"
	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/geo"
	"github.com/goliatone/go-blockform/pkg/i18n"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClient struct {
	mu sync.Mutex

	blocks      []model.FieldDeclaration
	catalog     i18n.Catalog
	tree        taxonomy.Tree
	prefill     map[string]backend.Prefill
	blocksErr   error
	submitErr   error
	submissions []backend.Submission

	translations func(ctx context.Context) (i18n.Catalog, error)

	// submitEntered and submitRelease, when set, hold Submit until released.
	submitEntered chan struct{}
	submitRelease chan struct{}
}

func (f *fakeClient) Blocks(context.Context) ([]model.FieldDeclaration, error) {
	if f.blocksErr != nil {
		return nil, f.blocksErr
	}
	return f.blocks, nil
}

func (f *fakeClient) Translations(ctx context.Context) (i18n.Catalog, error) {
	if f.translations != nil {
		return f.translations(ctx)
	}
	return f.catalog, nil
}

func (f *fakeClient) Industries(context.Context) (taxonomy.Tree, error) {
	return f.tree, nil
}

func (f *fakeClient) Prefill(_ context.Context, uid string) (backend.Prefill, error) {
	p, ok := f.prefill[uid]
	if !ok {
		return backend.Prefill{}, backend.ErrNoPrefill
	}
	return p, nil
}

func (f *fakeClient) Submit(_ context.Context, submission backend.Submission) error {
	if f.submitEntered != nil {
		close(f.submitEntered)
		<-f.submitRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, submission)
	return f.submitErr
}

func (f *fakeClient) submitted() []backend.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.Submission(nil), f.submissions...)
}

func sampleBlocks() []model.FieldDeclaration {
	return []model.FieldDeclaration{
		{Key: "Country", Type: model.FieldTypeCountry, Text: "Country"},
		{Key: "Region", Type: model.FieldTypeRegion},
		{Key: "VAT", Type: model.FieldTypeInput, VisibleIf: `Country == "DE"`},
		{Key: "", Type: model.FieldTypeText, Text: "orphan"},
		{Key: "Previous", Type: model.FieldTypeText, UpdateMode: model.ModeOnlyInUpdate},
		{Key: "Empty", Type: model.FieldTypeSelect},
		{Key: "Size", Type: model.FieldTypeRadio, Options: []string{"small", "large"}},
		{Key: "Industry", Type: model.FieldTypeIndustries},
		{Key: "Shelf space", Type: model.FieldTypeNumber, IndustryTags: []string{"retail"}},
	}
}

func sampleTree() taxonomy.Tree {
	return taxonomy.Tree{
		{Label: "Trade", Children: []taxonomy.Node{
			{Code: "47", Label: "Retail", Tags: []string{"retail"}},
			{Code: "46", Label: "Wholesale"},
		}},
	}
}

func sampleClient() *fakeClient {
	catalog := i18n.Catalog{
		"de": {"Country": "Land", "small": "klein"},
		"en": {"Country": "Country of residence"},
	}
	return &fakeClient{blocks: sampleBlocks(), catalog: catalog, tree: sampleTree()}
}

func startSession(t *testing.T, client *fakeClient, params Params, options ...Option) *Session {
	t.Helper()
	s := New(client, params, options...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	return s
}

func visibleKeys(fields []FieldView) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Field.Key)
	}
	return out
}

func TestParseParams(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		query  string
		want   Params
		update bool
		free   bool
	}{
		{name: "defaults", query: "", want: Params{Lang: "de"}},
		{
			name:   "update and free",
			query:  "lang=EN&uid=abc&free_code=X1&forceTrans=true",
			want:   Params{Lang: "en", UID: "abc", FreeCode: "X1", ForceTranslations: true},
			update: true,
			free:   true,
		},
		{name: "dash is not free", query: "free_code=-", want: Params{Lang: "de", FreeCode: "-"}},
		{
			name:   "submitted",
			query:  "uid=abc&submitted=true",
			want:   Params{Lang: "de", UID: "abc", Submitted: true},
			update: true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			values, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("ParseQuery returned error: %v", err)
			}
			got := ParseParams(values)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("params mismatch (-want +got):\n%s", diff)
			}
			if got.UpdateMode() != tc.update || got.FreeMode() != tc.free {
				t.Fatalf("modes = (%v, %v), want (%v, %v)", got.UpdateMode(), got.FreeMode(), tc.update, tc.free)
			}
		})
	}
}

func TestVisibleFields(t *testing.T) {
	t.Parallel()

	s := startSession(t, sampleClient(), Params{Lang: "de"}, WithIDGenerator(func() string { return "new-id" }))
	if s.Status() != StatusReady || s.ID() != "new-id" {
		t.Fatalf("status = %s, id = %q", s.Status(), s.ID())
	}

	if diff := cmp.Diff([]string{"Country", "Size", "Industry"}, visibleKeys(s.Visible())); diff != "" {
		t.Fatalf("initial fields mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.SetAnswer("Country", answers.String("DE")); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	if _, err := s.SetAnswer("Industry", answers.String("47")); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	fields := s.Visible()
	want := []string{"Country", "Region", "VAT", "Size", "Industry", "Shelf space"}
	if diff := cmp.Diff(want, visibleKeys(fields)); diff != "" {
		t.Fatalf("fields after answers mismatch (-want +got):\n%s", diff)
	}

	if fields[0].Label != "Land" {
		t.Fatalf("country label = %q, want translated", fields[0].Label)
	}
	if fields[1].Choices[0] != (Choice{Value: "Baden-Württemberg", Label: "Baden-Württemberg"}) {
		t.Fatalf("unexpected region choices %v", fields[1].Choices[:2])
	}
	if fields[3].Choices[0].Label != "klein" || fields[3].Choices[1].Label != "large" {
		t.Fatalf("unexpected option labels %+v", fields[3].Choices)
	}
	if diff := cmp.Diff(map[string]bool{"Trade": true}, fields[4].Expanded); diff != "" {
		t.Fatalf("expanded mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.SetAnswer("Industry", answers.String("46")); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	if got := visibleKeys(s.Visible()); got[len(got)-1] != "Industry" {
		t.Fatalf("tag gated field should hide for an untagged leaf, got %v", got)
	}
}

func TestStartFailure(t *testing.T) {
	t.Parallel()

	client := sampleClient()
	client.blocksErr = errors.New("boom")
	s := New(client, Params{Lang: "de"})
	err := s.Start(context.Background())
	if err == nil || !errors.Is(err, client.blocksErr) {
		t.Fatalf("expected wrapped blocks error, got %v", err)
	}
	if s.Status() != StatusError || s.Err() == nil {
		t.Fatalf("status = %s, err = %v", s.Status(), s.Err())
	}
	if _, err := s.SetAnswer("Country", answers.String("DE")); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}

func TestPrefillNormalization(t *testing.T) {
	t.Parallel()

	client := sampleClient()
	client.prefill = map[string]backend.Prefill{
		"abc": {Answers: map[string]any{
			"Country":     "AT",
			"Services":    "Audit, Tax",
			"Umsatz 2024": "1.234,5",
		}},
	}
	s := startSession(t, client, Params{Lang: "de", UID: "abc"})
	if s.ID() != "abc" {
		t.Fatalf("id = %q, want uid", s.ID())
	}
	set := s.Answers()
	if got, _ := set.Str("Country"); got != "AT" {
		t.Fatalf("Country = %q", got)
	}
	if got, _ := set.Lookup("Services").List(); !cmp.Equal(got, []string{"Audit", "Tax"}) {
		t.Fatalf("Services = %v, want split list", got)
	}
	if got, _ := set.Str("Umsatz 2024"); got != "1.234,5" {
		t.Fatalf("wizard cell = %q, want kept verbatim", got)
	}
	if got := visibleKeys(s.Visible()); !cmp.Equal(got[:3], []string{"Country", "Region", "Previous"}) {
		t.Fatalf("update mode fields = %v", got)
	}
}

func TestMissingPrefillStartsEmpty(t *testing.T) {
	t.Parallel()

	s := startSession(t, sampleClient(), Params{Lang: "de", UID: "unknown"})
	if s.Answers().Len() != 0 || s.ID() != "unknown" {
		t.Fatalf("answers = %d, id = %q", s.Answers().Len(), s.ID())
	}
}

func wizardClient() *fakeClient {
	blocks := []model.FieldDeclaration{
		{Key: "Company", Type: model.FieldTypeInput},
		{Key: "Finance", Type: model.FieldTypeFinancialWizard},
	}
	return &fakeClient{blocks: blocks, catalog: i18n.Catalog{"de": {}}}
}

func TestWizardWritesThroughFinanceRules(t *testing.T) {
	t.Parallel()

	engine := finance.New(finance.WithPeriods("2024"))
	s := startSession(t, wizardClient(), Params{Lang: "de"}, WithEngine(engine))
	keys := engine.Keys()

	if got := s.WizardState().OpenRow; got != keys.Revenue {
		t.Fatalf("open row = %q, want revenue", got)
	}
	ebit := finance.Cell(keys.OperatingResult, "2024")
	if _, err := s.SetAnswer(ebit, answers.String("100")); !errors.Is(err, ErrInputDisabled) {
		t.Fatalf("expected ErrInputDisabled before the chain reaches EBIT, got %v", err)
	}

	steps := []struct {
		key   string
		value string
	}{
		{finance.Cell(keys.Revenue, "2024"), "1.000"},
		{keys.SingleManager, keys.No},
		{finance.Cell(keys.Depreciation, "2024"), "10"},
		{ebit, "5.000"},
	}
	var set *answers.Set
	for _, step := range steps {
		var err error
		if set, err = s.SetAnswer(step.key, answers.String(step.value)); err != nil {
			t.Fatalf("SetAnswer(%q) returned error: %v", step.key, err)
		}
	}
	if got, _ := set.Str(ebit); got != "1.000" {
		t.Fatalf("EBIT = %q, want clamped to revenue", got)
	}
	if got := s.WizardState().OpenRow; got != keys.Adjustment {
		t.Fatalf("open row = %q, want adjustment", got)
	}

	fields := s.Visible()
	if len(fields) != 2 || fields[1].Preview == nil {
		t.Fatalf("expected wizard field with preview, got %+v", fields)
	}
	margin, _ := fields[1].Preview.Row(keys.Margin)
	if margin.Cells[0] != "100%" {
		t.Fatalf("preview margin = %q", margin.Cells[0])
	}
}

func TestTogglePeriodStoresSelection(t *testing.T) {
	t.Parallel()

	engine := finance.New()
	s := startSession(t, wizardClient(), Params{Lang: "de"}, WithEngine(engine))

	state, err := s.TogglePeriod("2023")
	if err != nil {
		t.Fatalf("TogglePeriod returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"2024", "2025"}, state.SelectedPeriods); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	stored, _ := s.Answers().Lookup(engine.Keys().Periods).List()
	if diff := cmp.Diff([]string{"2024", "2025"}, stored); diff != "" {
		t.Fatalf("stored periods mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.TogglePeriod("1999"); err == nil {
		t.Fatalf("expected unknown period error")
	}
	if _, err := s.ToggleRow(engine.Keys().Revenue); err != nil {
		t.Fatalf("ToggleRow returned error: %v", err)
	}
	if s.WizardState().OpenRow != "" {
		t.Fatalf("toggling the open row should close it")
	}
}

func TestSubmitOptimistic(t *testing.T) {
	t.Parallel()

	client := sampleClient()
	client.submitErr = errors.New("network down")
	s := startSession(t, client, Params{Lang: "en", FreeCode: "F1"},
		WithIDGenerator(func() string { return "id-1" }),
		WithLink("https://example.test/form"))

	if _, err := s.SetAnswer("Country", answers.String("CH")); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if s.Status() != StatusSubmitted {
		t.Fatalf("status = %s, want submitted", s.Status())
	}
	if _, err := s.SetAnswer("Country", answers.String("DE")); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked after submit, got %v", err)
	}
	if err := s.Submit(context.Background()); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked on second submit, got %v", err)
	}

	sent := client.submitted()
	if len(sent) != 1 {
		t.Fatalf("expected one submission, got %d", len(sent))
	}
	got := sent[0]
	if got.UUID != "id-1" || got.Lang != "en" || got.FreeCode != "F1" ||
		got.Link != "https://example.test/form?uid=id-1" ||
		bool(got.UpdateMode) || !bool(got.FreeMode) {
		t.Fatalf("unexpected submission %+v", got)
	}
	if v, _ := got.Answers.Str("Country"); v != "CH" {
		t.Fatalf("submitted Country = %q", v)
	}

	view := s.View()
	if view.Link != "https://example.test/form?free_code=F1&lang=en&uid=id-1" || view.Fields != nil {
		t.Fatalf("unexpected thank-you view %+v", view)
	}
}

func TestSubmitLocksWhileInFlight(t *testing.T) {
	t.Parallel()

	client := sampleClient()
	client.submitEntered = make(chan struct{})
	client.submitRelease = make(chan struct{})
	s := startSession(t, client, Params{Lang: "de"})

	done := make(chan error, 1)
	go func() { done <- s.Submit(context.Background()) }()
	<-client.submitEntered

	if s.Status() != StatusSubmitting {
		t.Fatalf("status = %s, want submitting", s.Status())
	}
	if _, err := s.SetAnswer("Country", answers.String("DE")); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked while submitting, got %v", err)
	}
	if err := s.Submit(context.Background()); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked on concurrent submit, got %v", err)
	}

	close(client.submitRelease)
	if err := <-done; err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if s.Status() != StatusSubmitted {
		t.Fatalf("status = %s, want submitted", s.Status())
	}
	if s.Answers().Has("Country") {
		t.Fatal("answer written while submitting")
	}
	if got := len(client.submitted()); got != 1 {
		t.Fatalf("expected one submission, got %d", got)
	}
}

func TestSubmitAcknowledged(t *testing.T) {
	t.Parallel()

	client := sampleClient()
	client.submitErr = errors.New("network down")
	s := startSession(t, client, Params{Lang: "de"}, WithSubmitPolicy(AcknowledgedSubmit))

	err := s.Submit(context.Background())
	if !errors.Is(err, client.submitErr) {
		t.Fatalf("expected submit error, got %v", err)
	}
	if s.Status() != StatusReady {
		t.Fatalf("status = %s, want ready after failed submit", s.Status())
	}
	if _, err := s.SetAnswer("Country", answers.String("DE")); err != nil {
		t.Fatalf("session should accept edits again: %v", err)
	}

	client.mu.Lock()
	client.submitErr = nil
	client.mu.Unlock()
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if s.Status() != StatusSubmitted {
		t.Fatalf("status = %s, want submitted", s.Status())
	}
}

func TestSubmittedParamShowsThankYou(t *testing.T) {
	t.Parallel()

	client := sampleClient()
	client.prefill = map[string]backend.Prefill{"abc": {Answers: map[string]any{"Country": "DE"}}}
	s := startSession(t, client, Params{Lang: "de", UID: "abc", Submitted: true})

	if s.Status() != StatusSubmitted || s.Answers().Len() != 0 {
		t.Fatalf("status = %s, answers = %d", s.Status(), s.Answers().Len())
	}
	if got := s.SubmittedLink(); got != "?lang=de&uid=abc" {
		t.Fatalf("SubmittedLink = %q", got)
	}
}

func TestCountryAutofill(t *testing.T) {
	t.Parallel()

	s := startSession(t, sampleClient(), Params{Lang: "de"},
		WithLocator(geo.LocatorFunc(func(context.Context) (string, error) { return "gb", nil })))
	if got, _ := s.Answers().Str("Country"); got != "UK" {
		t.Fatalf("Country = %q, want UK", got)
	}

	client := sampleClient()
	client.prefill = map[string]backend.Prefill{"abc": {Answers: map[string]any{"Country": "AT"}}}
	s = startSession(t, client, Params{Lang: "de", UID: "abc"},
		WithLocator(geo.LocatorFunc(func(context.Context) (string, error) { return "DE", nil })))
	if got, _ := s.Answers().Str("Country"); got != "AT" {
		t.Fatalf("Country = %q, want prefilled value kept", got)
	}

	s = startSession(t, sampleClient(), Params{Lang: "de"},
		WithLocator(geo.LocatorFunc(func(context.Context) (string, error) { return "", errors.New("offline") })))
	if s.Answers().Has("Country") {
		t.Fatalf("locator failure should leave Country unanswered")
	}
}

func TestForceTranslationsInvalidatesCache(t *testing.T) {
	t.Parallel()

	store := i18n.NewMemoryStore()
	clock := clockwork.NewFakeClock()
	if err := store.Save(context.Background(), i18n.Entry{
		Catalog:   i18n.Catalog{"de": {"Country": "Alt"}},
		FetchedAt: clock.Now(),
	}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	client := sampleClient()
	cache := i18n.NewCache(client.Translations, i18n.WithStore(store), i18n.WithClock(clock))

	s := startSession(t, client, Params{Lang: "de"}, WithTranslationCache(cache))
	if got := s.Translate("Country", ""); got != "Alt" {
		t.Fatalf("cached label = %q", got)
	}

	cache = i18n.NewCache(client.Translations, i18n.WithStore(store), i18n.WithClock(clock))
	s = startSession(t, client, Params{Lang: "de", ForceTranslations: true}, WithTranslationCache(cache))
	if got := s.Translate("Country", ""); got != "Land" {
		t.Fatalf("forced label = %q, want fresh catalog", got)
	}
}

func TestSetLanguageLastCallWins(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	client := sampleClient()
	client.translations = func(context.Context) (i18n.Catalog, error) {
		if calls.Add(1) == 2 {
			close(entered)
			<-release
		}
		return client.catalog, nil
	}
	cache := i18n.NewCache(client.Translations, i18n.WithClock(clock))
	s := startSession(t, client, Params{Lang: "de"}, WithTranslationCache(cache))
	if _, err := s.SetAnswer("Country", answers.String("DE")); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	clock.Advance(2 * time.Hour)

	done := make(chan error, 1)
	go func() { done <- s.SetLanguage(context.Background(), "fr") }()
	<-entered
	if err := s.SetLanguage(context.Background(), "en"); err != nil {
		t.Fatalf("SetLanguage returned error: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("superseded SetLanguage returned error: %v", err)
	}

	if s.Lang() != "en" {
		t.Fatalf("lang = %q, want en", s.Lang())
	}
	if got := s.Translate("Country", ""); got != "Country of residence" {
		t.Fatalf("label = %q", got)
	}
	if got, _ := s.Answers().Str("Country"); got != "DE" {
		t.Fatalf("answers lost on language change: %q", got)
	}
}

func TestParseSubmitPolicy(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]SubmitPolicy{"": OptimisticSubmit, "Acknowledged": AcknowledgedSubmit} {
		got, err := ParseSubmitPolicy(raw)
		if err != nil || got != want {
			t.Fatalf("ParseSubmitPolicy(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := ParseSubmitPolicy("eventually"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
