// Package orchestrator composes the answer store, visibility evaluator,
// financial wizard, and backend client into one questionnaire Session:
// load declarations, translations, and the industry taxonomy concurrently,
// apply prefill, decide the rendered field set on every change, and submit.
package orchestrator
