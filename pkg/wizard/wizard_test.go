package wizard

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockform/pkg/answers"
	"github.com/goliatone/go-blockform/pkg/finance"
)

func values(pairs ...string) *answers.Set {
	m := make(map[string]answers.Value, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = answers.String(pairs[i+1])
	}
	return answers.NewSet(m)
}

func withRevenue(set *answers.Set) *answers.Set {
	return set.
		With("Umsatz 2023", answers.String("100.000")).
		With("Umsatz 2024", answers.String("120.000")).
		With("Umsatz 2025", answers.String("150.000"))
}

func eligibleIDs(views []RowView) []string {
	var ids []string
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestLaterRowNotEligibleWithPrefilledData(t *testing.T) {
	t.Parallel()

	c := New(finance.New())
	set := values(
		"Umsatz 2023", "100.000",
		"Umsatz 2024", "",
		"Umsatz 2025", "150.000",
		"Einzelgeschäftsführung", "Nein",
		"Abschreibungen 2023", "1.000",
		"Abschreibungen 2024", "1.000",
		"Abschreibungen 2025", "1.000",
	)
	c.Mount(set)

	progress := c.Progress(set)
	if progress.IsEligible("CEO-Saläre") {
		t.Fatalf("compensation must not be eligible while revenue is incomplete")
	}
	if progress.IsEligible("Abschreibungen") {
		t.Fatalf("depreciation must not be eligible even though its data is present")
	}
	if diff := cmp.Diff([]string{"Umsatz"}, eligibleIDs(c.View(set))); diff != "" {
		t.Fatalf("eligible rows mismatch (-want +got):\n%s", diff)
	}
}

func TestChainProgression(t *testing.T) {
	t.Parallel()

	c := New(finance.New())
	set := answers.Empty()
	state := c.Mount(set)
	if state.OpenRow != "Umsatz" {
		t.Fatalf("open row after mount = %q", state.OpenRow)
	}
	if diff := cmp.Diff([]string{"2023", "2024", "2025"}, state.SelectedPeriods); diff != "" {
		t.Fatalf("default periods mismatch (-want +got):\n%s", diff)
	}

	steps := []struct {
		name     string
		apply    func(*answers.Set) *answers.Set
		wantOpen string
		wantRows []string
	}{
		{
			name:     "revenue",
			apply:    withRevenue,
			wantOpen: "CEO-Saläre",
			wantRows: []string{"Umsatz", "CEO-Saläre"},
		},
		{
			name: "single manager yes",
			apply: func(s *answers.Set) *answers.Set {
				return s.With("Einzelgeschäftsführung", answers.String("Ja"))
			},
			wantOpen: "CEO-Saläre",
			wantRows: []string{"Umsatz", "CEO-Saläre"},
		},
		{
			name: "compensation",
			apply: func(s *answers.Set) *answers.Set {
				return s.
					With("CEO-Saläre 2023", answers.String("80.000")).
					With("CEO-Saläre 2024", answers.String("80.000")).
					With("CEO-Saläre 2025", answers.String("85.000"))
			},
			wantOpen: "Abschreibungen",
			wantRows: []string{"Umsatz", "CEO-Saläre", "Abschreibungen"},
		},
		{
			name: "depreciation",
			apply: func(s *answers.Set) *answers.Set {
				return s.
					With("Abschreibungen 2023", answers.String("1.000")).
					With("Abschreibungen 2024", answers.String("1.000")).
					With("Abschreibungen 2025", answers.String("1.000"))
			},
			wantOpen: "EBIT",
			wantRows: []string{"Umsatz", "CEO-Saläre", "Abschreibungen", "EBIT"},
		},
		{
			name: "operating result",
			apply: func(s *answers.Set) *answers.Set {
				return s.
					With("EBIT 2023", answers.String("20.000")).
					With("EBIT 2024", answers.String("25.000")).
					With("EBIT 2025", answers.String("30.000"))
			},
			wantOpen: "EBIT Anpassung",
			wantRows: []string{"Umsatz", "CEO-Saläre", "Abschreibungen", "EBIT", "EBIT-Marge", "EBIT Anpassung"},
		},
		{
			name: "adjustment",
			apply: func(s *answers.Set) *answers.Set {
				return s.
					With("EBIT Anpassung 2023", answers.String("-5000")).
					With("EBIT Anpassung 2024", answers.String("")).
					With("EBIT Anpassung 2025", answers.String("0"))
			},
			wantOpen: "",
			wantRows: []string{"Umsatz", "CEO-Saläre", "Abschreibungen", "EBIT", "EBIT-Marge", "EBIT Anpassung", "EBIT angepasst", "EBITC"},
		},
	}

	for _, step := range steps {
		set = step.apply(set)
		state := c.AnswersChanged(set)
		if state.OpenRow != step.wantOpen {
			t.Fatalf("%s: open row = %q, want %q", step.name, state.OpenRow, step.wantOpen)
		}
		if diff := cmp.Diff(step.wantRows, eligibleIDs(c.View(set))); diff != "" {
			t.Fatalf("%s: eligible rows mismatch (-want +got):\n%s", step.name, diff)
		}
	}

	views := c.View(set)
	combined := views[len(views)-1]
	if combined.Cells[0].Value != "95.000" {
		t.Fatalf("EBITC 2023 = %q, want 95.000", combined.Cells[0].Value)
	}
	margin := views[4]
	if margin.Cells[0].Value != "20%" {
		t.Fatalf("EBIT-Marge 2023 = %q, want 20%%", margin.Cells[0].Value)
	}
}

func TestSingleManagerNoCompletesCompensation(t *testing.T) {
	t.Parallel()

	c := New(finance.New())
	set := withRevenue(answers.Empty())
	c.Mount(set)

	if Complete(finance.DefaultKeys(), c.Rows()[1], set, []string{"2023"}) {
		t.Fatalf("compensation must be incomplete while the single-manager question is unanswered")
	}

	set = set.With("Einzelgeschäftsführung", answers.String("Nein"))
	state := c.AnswersChanged(set)
	if state.OpenRow != "Abschreibungen" {
		t.Fatalf("open row = %q, want Abschreibungen", state.OpenRow)
	}
	if c.InputEnabled(set, "CEO-Saläre 2023") {
		t.Fatalf("compensation inputs must be disabled when the answer is no")
	}

	views := c.View(set)
	if views[1].Question == nil || views[1].Question.Answer != "Nein" {
		t.Fatalf("expected inline question with answer, got %+v", views[1].Question)
	}
	if views[1].InputsEnabled {
		t.Fatalf("expected compensation row inputs disabled")
	}
}

func TestManualToggleUntilNextChange(t *testing.T) {
	t.Parallel()

	c := New(finance.New())
	set := withRevenue(answers.Empty())
	c.Mount(set)
	c.AnswersChanged(set)

	state, err := c.Toggle(set, "Umsatz")
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if state.OpenRow != "Umsatz" || !state.Manual {
		t.Fatalf("unexpected state after toggle: %+v", state)
	}

	state, err = c.Toggle(set, "Umsatz")
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if state.OpenRow != "" {
		t.Fatalf("expected repeated toggle to close the row, got %q", state.OpenRow)
	}

	c.Focus(set, "Umsatz")
	state, _ = c.Focus(set, "Umsatz")
	if state.OpenRow != "Umsatz" {
		t.Fatalf("expected focus not to close the row, got %q", state.OpenRow)
	}

	set = set.With("Umsatz 2023", answers.String("110.000"))
	state = c.AnswersChanged(set)
	if state.OpenRow != "CEO-Saläre" || state.Manual {
		t.Fatalf("expected automatic advance after answer change, got %+v", state)
	}

	if _, err := c.Toggle(set, "EBIT"); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
	if _, err := c.Toggle(set, "Cashflow"); !errors.Is(err, ErrUnknownRow) {
		t.Fatalf("expected ErrUnknownRow, got %v", err)
	}
}

func TestPeriodSelection(t *testing.T) {
	t.Parallel()

	c := New(finance.New())
	set := values("Umsatz 2023", "100.000", "Umsatz 2025", "150.000")
	c.Mount(set)

	if _, err := c.TogglePeriod("2024"); err != nil {
		t.Fatalf("TogglePeriod returned error: %v", err)
	}
	set = set.With("Finance Years", c.PeriodsValue())
	state := c.AnswersChanged(set)
	if diff := cmp.Diff([]string{"2023", "2025"}, state.SelectedPeriods); diff != "" {
		t.Fatalf("periods mismatch (-want +got):\n%s", diff)
	}
	if state.OpenRow != "CEO-Saläre" {
		t.Fatalf("revenue should be complete for the selected periods, open row = %q", state.OpenRow)
	}
	if c.InputEnabled(set, "Umsatz 2024") {
		t.Fatalf("unselected period must not accept input")
	}
	if !c.InputEnabled(set, "Umsatz 2023") {
		t.Fatalf("selected period must accept input")
	}

	state, _ = c.TogglePeriod("2024")
	if diff := cmp.Diff([]string{"2023", "2024", "2025"}, state.SelectedPeriods); diff != "" {
		t.Fatalf("periods mismatch after re-adding (-want +got):\n%s", diff)
	}

	if _, err := c.TogglePeriod("1999"); !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("expected ErrUnknownPeriod, got %v", err)
	}
}

func TestMountReadsStoredPeriods(t *testing.T) {
	t.Parallel()

	c := New(finance.New())
	set := answers.NewSet(map[string]answers.Value{
		"Finance Years": answers.Strings("2025", "2023", "1990"),
	})
	state := c.Mount(set)
	if diff := cmp.Diff([]string{"2023", "2025"}, state.SelectedPeriods); diff != "" {
		t.Fatalf("periods mismatch (-want +got):\n%s", diff)
	}

	single := New(finance.New()).Mount(values("Finance Years", "2024"))
	if diff := cmp.Diff([]string{"2024"}, single.SelectedPeriods); diff != "" {
		t.Fatalf("single period mismatch (-want +got):\n%s", diff)
	}
}

func TestNotMounted(t *testing.T) {
	t.Parallel()

	c := New(nil)
	if _, err := c.Toggle(answers.Empty(), "Umsatz"); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
	if _, err := c.TogglePeriod("2023"); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
	if got := c.AnswersChanged(answers.Empty()); got.OpenRow != "" {
		t.Fatalf("expected empty state before mount, got %+v", got)
	}

	c.Mount(answers.Empty())
	c.Unmount()
	if c.Mounted() {
		t.Fatalf("expected unmounted controller")
	}
}

func TestManages(t *testing.T) {
	t.Parallel()

	c := New(finance.New())
	for _, key := range []string{"Einzelgeschäftsführung", "Finance Years", "EBIT 2024"} {
		if !c.Manages(key) {
			t.Fatalf("expected %q to be a wizard key", key)
		}
	}
	if c.Manages("Firma") {
		t.Fatalf("expected Firma not to be a wizard key")
	}
}
