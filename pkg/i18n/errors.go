package i18n

import "errors"

var (
	// ErrMissingTranslation is returned when a key has no text.
	ErrMissingTranslation = errors.New("i18n: missing translation")
	// ErrNoFetcher is returned by a Cache without a fetch function.
	ErrNoFetcher = errors.New("i18n: no fetcher configured")
)
