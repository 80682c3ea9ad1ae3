package numeric

import "github.com/goliatone/go-blockform/pkg/answers"

// ParseValue parses an answer. Numbers pass through, strings go through
// Parse, everything else is 0.
func ParseValue(v answers.Value) float64 {
	if n, ok := v.Num(); ok {
		return n
	}
	if s, ok := v.Str(); ok {
		return Parse(s)
	}
	return 0
}

// FormatValue renders an answer for display: unset and blank strings render
// "", everything else is formatted.
func FormatValue(v answers.Value) string {
	if n, ok := v.Num(); ok {
		return Format(n)
	}
	if s, ok := v.Str(); ok {
		return FormatRaw(s)
	}
	return ""
}

// Present reports whether a raw answer was supplied at all. A blank string
// counts as present; only absence does not.
func Present(set *answers.Set, key string) bool {
	return set.Has(key)
}

// Positive reports whether the answer parses to a value greater than zero.
func Positive(set *answers.Set, key string) bool {
	return ParseValue(set.Lookup(key)) > 0
}
