package template

import "io"

// TemplateRenderer executes a named template from the bundle. When out is
// given the result is written there as well as returned.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// FilterRegistrar is implemented by engines that accept custom filters, such
// as the figure formatting the page templates use.
type FilterRegistrar interface {
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
}
