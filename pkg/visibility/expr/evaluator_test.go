package expr

import (
	"strings"
	"testing"

	"github.com/goliatone/go-blockform/pkg/answers"
)

func lookupFrom(values map[string]any) Lookup {
	set := answers.NewSet(nil)
	for key, raw := range values {
		set = set.With(key, answers.FromAny(raw))
	}
	return set.Get
}

func mustCompile(t *testing.T, rule string) *Program {
	t.Helper()
	program, err := Compile(rule)
	if err != nil {
		t.Fatalf("Compile(%q) returned error: %v", rule, err)
	}
	return program
}

func TestProgramStringEquality(t *testing.T) {
	t.Parallel()

	program := mustCompile(t, `Rechtsform == "AG"`)

	cases := []struct {
		name   string
		values map[string]any
		want   bool
	}{
		{name: "match", values: map[string]any{"Rechtsform": "AG"}, want: true},
		{name: "case sensitive", values: map[string]any{"Rechtsform": "ag"}, want: false},
		{name: "no trimming", values: map[string]any{"Rechtsform": "AG "}, want: false},
		{name: "absent", values: nil, want: false},
		{name: "list never equals string", values: map[string]any{"Rechtsform": []string{"AG"}}, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := program.Eval(lookupFrom(tc.values)); got != tc.want {
				t.Fatalf("Eval = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProgramCompound(t *testing.T) {
	t.Parallel()

	program := mustCompile(t, `Rechtsform == "AG" && (Mitarbeiter != "0" || !Branche)`)

	if !program.Eval(lookupFrom(map[string]any{"Rechtsform": "AG", "Mitarbeiter": "12"})) {
		t.Fatalf("expected true when employees are non-zero")
	}
	if !program.Eval(lookupFrom(map[string]any{"Rechtsform": "AG", "Mitarbeiter": "0"})) {
		t.Fatalf("expected true when industry is blank")
	}
	if program.Eval(lookupFrom(map[string]any{"Rechtsform": "AG", "Mitarbeiter": "0", "Branche": "Handel"})) {
		t.Fatalf("expected false when both alternatives fail")
	}
	if program.Eval(lookupFrom(map[string]any{"Rechtsform": "GmbH", "Mitarbeiter": "12"})) {
		t.Fatalf("expected false for another legal form")
	}
}

func TestProgramQuotedIdentifier(t *testing.T) {
	t.Parallel()

	program := mustCompile(t, "`Finance Years` == '2025'")
	if !program.Eval(lookupFrom(map[string]any{"Finance Years": "2025"})) {
		t.Fatalf("expected quoted identifier with spaces to resolve")
	}
	if got := program.Source(); got != "`Finance Years` == '2025'" {
		t.Fatalf("Source = %q", got)
	}
}

func TestProgramNumberLiteral(t *testing.T) {
	t.Parallel()

	program := mustCompile(t, "`Umsatz 2024` == 100000")
	if !program.Eval(lookupFrom(map[string]any{"Umsatz 2024": "100.000"})) {
		t.Fatalf("expected grouped figure to compare numerically")
	}
	if program.Eval(lookupFrom(nil)) {
		t.Fatalf("expected absent answer not to equal a number")
	}
}

func TestProgramBoolAndNull(t *testing.T) {
	t.Parallel()

	if !mustCompile(t, "consent == true").Eval(lookupFrom(map[string]any{"consent": "true"})) {
		t.Fatalf("expected string true to match bool literal")
	}
	if mustCompile(t, "consent == true").Eval(lookupFrom(map[string]any{"consent": "yes"})) {
		t.Fatalf("expected non-bool string not to match")
	}
	if !mustCompile(t, "note == null").Eval(lookupFrom(nil)) {
		t.Fatalf("expected absent answer to equal null")
	}
	if !mustCompile(t, "note != null").Eval(lookupFrom(map[string]any{"note": ""})) {
		t.Fatalf("expected blank answer to be distinct from null")
	}
}

func TestProgramNilIsTrue(t *testing.T) {
	t.Parallel()

	var program *Program
	if !program.Eval(nil) {
		t.Fatalf("expected nil program to evaluate true")
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":            "empty expression",
		`a = "b"`:     "use '=='",
		`a & b`:       "use '&&'",
		`a | b`:       "use '||'",
		`(a == "b"`:   "missing closing",
		`a == `:       "missing literal",
		`a == b`:      "expected literal",
		`a == "b`:     "unterminated string",
		"`a == \"b\"": "unterminated quoted identifier",
		`a == "b" c`:  "unexpected token",
		`== "b"`:      "expected identifier",
	}

	for rule, want := range cases {
		_, err := Compile(rule)
		if err == nil {
			t.Fatalf("Compile(%q) expected error", rule)
		}
		if !strings.HasPrefix(err.Error(), "visibility/expr: ") {
			t.Fatalf("Compile(%q) error %q missing package prefix", rule, err)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("Compile(%q) error %q, want substring %q", rule, err, want)
		}
	}
}
