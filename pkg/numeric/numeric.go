// Package numeric parses and formats amounts written with "." as the
// thousands separator and "," as the decimal separator ("100.000",
// "1.234,5").
//
// The package is deliberately asymmetric: Parse maps anything unparseable to
// 0, while the Format helpers that take raw input map blank to blank. Callers
// that need to tell "entered 0" from "not entered" must inspect the raw
// string, not the parsed number.
package numeric

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MaxFractionDigits bounds the decimals rendered by Format.
const MaxFractionDigits = 2

var printer = message.NewPrinter(language.German)

// Parse interprets raw using the thousands/decimal convention. Characters
// other than digits, the first ',' and a '-' ahead of the first digit are
// dropped; a second ',' ends the number. Unparseable or non-finite input
// yields 0.
func Parse(raw string) float64 {
	var b strings.Builder
	b.Grow(len(raw))
	decimal := false
scan:
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			if decimal {
				break scan
			}
			decimal = true
			b.WriteByte('.')
		case r == '-' && b.Len() == 0:
			b.WriteByte('-')
		}
	}

	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return 0
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// Format renders v as "1.234.567,89".
func Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == 0 {
		// avoid "-0"
		v = 0
	}
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(MaxFractionDigits)))
}

// FormatRaw formats previously entered text. Blank input stays blank;
// anything else is parsed first, so "abc" renders as "0".
func FormatRaw(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return Format(Parse(raw))
}

// Sanitize filters a keystroke-level edit: only digits, '.', ',' and '-'
// survive, and a second '.' or ',' is removed.
func Sanitize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	seenDot, seenComma := false, false
	for _, r := range input {
		switch {
		case r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == '.':
			if seenDot {
				continue
			}
			seenDot = true
			b.WriteRune(r)
		case r == ',':
			if seenComma {
				continue
			}
			seenComma = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
