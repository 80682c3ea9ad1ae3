package wizard

import "errors"

var (
	// ErrUnknownRow is returned for a row ID outside the chain.
	ErrUnknownRow = errors.New("wizard: unknown row")
	// ErrNotEligible is returned when opening a row whose predecessors are
	// incomplete.
	ErrNotEligible = errors.New("wizard: row not eligible")
	// ErrUnknownPeriod is returned for a period that is not configured.
	ErrUnknownPeriod = errors.New("wizard: unknown period")
	// ErrNotMounted is returned when the controller is used before Mount.
	ErrNotMounted = errors.New("wizard: not mounted")
)
