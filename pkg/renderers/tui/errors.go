package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNotReady is returned when the session has not finished loading.
	ErrNotReady = errors.New("tui: session not ready")
)
