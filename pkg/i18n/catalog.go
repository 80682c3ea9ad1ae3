// Package i18n holds the translation strings supplied by the backend and a
// time-bounded cache in front of the fetch. The engine only consumes a
// key to string mapping per language; the strings themselves are content.
package i18n

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultLanguage is used when a session does not request one.
const DefaultLanguage = "de"

// Strings maps translation keys to text for one language.
type Strings map[string]string

// Catalog maps language codes to their strings.
type Catalog map[string]Strings

// Languages returns the languages in the catalog, sorted.
func (c Catalog) Languages() []string {
	out := make([]string, 0, len(c))
	for lang := range c {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// For returns the strings of lang, or an empty mapping.
func (c Catalog) For(lang string) Strings {
	if s, ok := c[normalizeLang(lang)]; ok && s != nil {
		return s
	}
	return Strings{}
}

func normalizeLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// Translator resolves keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Bundle is a Translator over a fixed catalog.
type Bundle struct {
	catalog  Catalog
	fallback string
}

// NewBundle wraps catalog. Lookups that miss in the requested language fall
// back to fallback when it is non-empty.
func NewBundle(catalog Catalog, fallback string) *Bundle {
	normalized := make(Catalog, len(catalog))
	for lang, strs := range catalog {
		normalized[normalizeLang(lang)] = strs
	}
	return &Bundle{catalog: normalized, fallback: normalizeLang(fallback)}
}

// Catalog returns the wrapped catalog.
func (b *Bundle) Catalog() Catalog {
	if b == nil {
		return nil
	}
	return b.catalog
}

// Translate implements Translator. Args, when given, are applied with
// fmt.Sprintf.
func (b *Bundle) Translate(locale, key string, args ...any) (string, error) {
	if b == nil {
		return "", ErrMissingTranslation
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrMissingTranslation)
	}
	msg, ok := b.lookup(normalizeLang(locale), key)
	if !ok && b.fallback != "" {
		msg, ok = b.lookup(b.fallback, key)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return msg, nil
}

func (b *Bundle) lookup(lang, key string) (string, bool) {
	msg, ok := b.catalog[lang][key]
	if !ok || strings.TrimSpace(msg) == "" {
		return "", false
	}
	return msg, true
}

// Text translates key or returns fallback. An empty fallback returns key.
func Text(t Translator, locale, key, fallback string) string {
	if t != nil {
		if msg, err := t.Translate(locale, key); err == nil {
			return msg
		}
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}
