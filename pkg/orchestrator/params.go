package orchestrator

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-blockform/pkg/i18n"
	"github.com/goliatone/go-blockform/pkg/visibility"
)

// Params are the session inputs taken from the page query string.
type Params struct {
	Lang      string
	UID       string
	Submitted bool
	FreeCode  string
	// ForceTranslations bypasses the translation cache on start.
	ForceTranslations bool
}

// ParseParams reads lang, uid, submitted, free_code and forceTrans.
func ParseParams(values url.Values) Params {
	lang := strings.ToLower(strings.TrimSpace(values.Get("lang")))
	if lang == "" {
		lang = i18n.DefaultLanguage
	}
	return Params{
		Lang:              lang,
		UID:               strings.TrimSpace(values.Get("uid")),
		Submitted:         values.Get("submitted") == "true",
		FreeCode:          strings.TrimSpace(values.Get("free_code")),
		ForceTranslations: values.Get("forceTrans") == "true",
	}
}

// UpdateMode reports whether the session edits a previous submission.
func (p Params) UpdateMode() bool {
	return p.UID != ""
}

// FreeMode reports whether a usable free code was supplied; "-" means none.
func (p Params) FreeMode() bool {
	return p.FreeCode != "" && p.FreeCode != "-"
}

// Context is the visibility context for the mode flags.
func (p Params) Context() visibility.Context {
	return visibility.Context{UpdateMode: p.UpdateMode(), FreeMode: p.FreeMode()}
}
