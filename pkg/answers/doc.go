// Package answers holds respondent answers keyed by field key (or a
// synthesized composite key such as "Umsatz 2023"). Snapshots are immutable:
// every write produces a new Set, so observers can detect changes through
// reference identity with Set.Same.
//
// An unset value and an empty string are distinct. "Not yet answered" is
// represented by the absence of a key (or a KindUnset value); "answered as
// blank" is a KindString value holding "".
package answers
