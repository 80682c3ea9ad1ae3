// Package model defines the questionnaire field declarations ("blocks")
// supplied by the backend. Declarations are decoded once per session and
// treated as immutable afterwards.
//
// Decoding accepts the column names used by the backend sheet (`key`,
// `type`, `text`, `options`, `Visible If`, `Update Mode`, `Free Mode`,
// `Industry Tags`) from both JSON and YAML. `options` and `Industry Tags`
// may be an array or a comma-joined string.
package model
