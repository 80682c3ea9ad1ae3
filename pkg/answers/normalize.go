package answers

import (
	"regexp"
	"strings"
)

var listSeparator = regexp.MustCompile(`\s*,\s*`)

// Normalize converts prefill data into a snapshot. String values holding a
// comma are reinterpreted as multi-value answers ("Ja, Nein" becomes
// ["Ja", "Nein"]). Keys for which keep reports true are stored as-is; the
// orchestrator uses it to protect decimal-comma figures such as "1.234,5".
func Normalize(raw map[string]any, keep func(key string) bool) *Set {
	values := make(map[string]Value, len(raw))
	for key, item := range raw {
		v := FromAny(item)
		if keep == nil || !keep(key) {
			v = NormalizeValue(v)
		}
		values[key] = v
	}
	return NewSet(values)
}

// NormalizeValue applies the comma-joined list rule to a single value.
func NormalizeValue(v Value) Value {
	s, ok := v.Str()
	if !ok || !strings.Contains(s, ",") {
		return v
	}
	return Strings(listSeparator.Split(s, -1)...)
}
