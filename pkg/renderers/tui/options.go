package tui

import (
	"io"

	"go.uber.org/zap"
)

// OutputFormat controls how the collected answers are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the answers and the edit link as JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits one "key: value" line per answer.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme holds the prefixes printed before notices and errors, and the icon
// shown before each question by the terminal driver.
type Theme struct {
	InfoPrefix   string
	ErrorPrefix  string
	QuestionIcon string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets where the default driver prints messages.
func WithOutput(out io.Writer) Option {
	return func(r *Renderer) {
		r.out = out
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLanguagePrompt asks for the display language before the first field
// when the catalog offers more than one.
func WithLanguagePrompt(enabled bool) Option {
	return func(r *Renderer) {
		r.languagePrompt = enabled
	}
}

// WithSubmitConfirmation asks before submitting. Declining returns the
// answers without submitting.
func WithSubmitConfirmation(enabled bool) Option {
	return func(r *Renderer) {
		r.confirmSubmit = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
