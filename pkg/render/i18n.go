package render

import "strings"

// Translation keys for the page chrome around the fields.
const (
	KeyLoading  = "loading"
	KeySubmit   = "submit"
	KeyThankYou = "thankYou"
	KeySearch   = "search"
)

var chromeDefaults = map[string]string{
	KeyLoading:  "Lade…",
	KeySubmit:   "Absenden",
	KeyThankYou: "Vielen Dank!",
	KeySearch:   "Search...",
}

// Translator resolves a key in the session language.
type Translator interface {
	Translate(key, fallback string) string
}

// MissingTranslationHandler returns the text used when key has no
// translation; fallback is the built-in default.
type MissingTranslationHandler func(key, fallback string) string

// Chrome translates a chrome key, falling back to the built-in default or
// whatever onMissing returns for it.
func Chrome(t Translator, key string, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	fallback := chromeDefaults[key]
	if onMissing != nil {
		fallback = onMissing(key, fallback)
	}
	if t == nil {
		if fallback == "" {
			return key
		}
		return fallback
	}
	return t.Translate(key, fallback)
}

// Label translates key, falling back to fallback and then to key.
func Label(t Translator, key, fallback string) string {
	if t == nil {
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}
	return t.Translate(key, fallback)
}
