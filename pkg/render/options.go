package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the session.
type RenderOptions struct {
	// Action is the form target for renderers that emit a submit control.
	Action string
	// Hidden fields are emitted alongside the visible fields.
	Hidden []HiddenField
	// Errors surfaces feedback keyed by field key. Unknown keys are shown at
	// form level (see MapErrors).
	Errors map[string][]string
	// OnMissing overrides the text used when a chrome string has no
	// translation.
	OnMissing MissingTranslationHandler
}
