package taxonomy

import "errors"

var (
	// ErrInvalidNode reports a tree that breaks the leaf/branch invariant.
	ErrInvalidNode = errors.New("taxonomy: invalid node")
	// ErrNoFetcher is returned by a Service constructed without a fetch function.
	ErrNoFetcher = errors.New("taxonomy: no fetcher configured")
)
