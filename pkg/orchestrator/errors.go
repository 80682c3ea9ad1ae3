package orchestrator

import "errors"

var (
	// ErrLocked is returned for edits while a submission is in flight or
	// after it completed.
	ErrLocked = errors.New("orchestrator: session locked")
	// ErrNotStarted is returned before Start succeeded.
	ErrNotStarted = errors.New("orchestrator: session not started")
	// ErrInputDisabled is returned when a wizard cell is written while the
	// wizard does not offer it.
	ErrInputDisabled = errors.New("orchestrator: input disabled")
)
