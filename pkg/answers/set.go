package answers

import (
	"encoding/json"
	"sort"
)

// Set is an immutable snapshot of answers. A nil *Set behaves as empty.
type Set struct {
	values map[string]Value
	order  []string
}

// NewSet builds a snapshot from values. Map iteration has no order, so keys
// are inserted sorted.
func NewSet(values map[string]Value) *Set {
	s := &Set{values: make(map[string]Value, len(values))}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.values[k] = values[k]
		s.order = append(s.order, k)
	}
	return s
}

// Empty returns a new empty snapshot.
func Empty() *Set {
	return &Set{values: map[string]Value{}}
}

// Get returns the value stored for key. Missing keys report an unset value
// and false.
func (s *Set) Get(key string) (Value, bool) {
	if s == nil {
		return Unset(), false
	}
	v, ok := s.values[key]
	return v, ok
}

// Lookup returns the value for key, unset when absent.
func (s *Set) Lookup(key string) Value {
	v, _ := s.Get(key)
	return v
}

// Has reports whether key holds a set value (blank strings count).
func (s *Set) Has(key string) bool {
	v, ok := s.Get(key)
	return ok && v.IsSet()
}

// Str returns the string answer for key; non-string values report false.
func (s *Set) Str(key string) (string, bool) {
	return s.Lookup(key).Str()
}

// Len reports the number of keys.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Keys returns keys in insertion order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// With returns a new snapshot with key set to value. The receiver is left
// untouched.
func (s *Set) With(key string, value Value) *Set {
	next := s.clone(1)
	if _, exists := next.values[key]; !exists {
		next.order = append(next.order, key)
	}
	next.values[key] = value
	return next
}

// Without returns a new snapshot with key removed.
func (s *Set) Without(key string) *Set {
	next := s.clone(0)
	if _, exists := next.values[key]; !exists {
		return next
	}
	delete(next.values, key)
	for i, k := range next.order {
		if k == key {
			next.order = append(next.order[:i:i], next.order[i+1:]...)
			break
		}
	}
	return next
}

// Merge returns a new snapshot overlaying other on top of the receiver.
func (s *Set) Merge(other *Set) *Set {
	next := s.clone(other.Len())
	for _, k := range other.Keys() {
		if _, exists := next.values[k]; !exists {
			next.order = append(next.order, k)
		}
		next.values[k] = other.values[k]
	}
	return next
}

// Same reports reference identity between two snapshots.
func (s *Set) Same(other *Set) bool {
	return s == other
}

// Map exports the snapshot as JSON-friendly data.
func (s *Set) Map() map[string]any {
	out := make(map[string]any, s.Len())
	if s == nil {
		return out
	}
	for k, v := range s.values {
		out[k] = v.Any()
	}
	return out
}

// MarshalJSON encodes the snapshot as a flat JSON object.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

func (s *Set) clone(extra int) *Set {
	if s == nil {
		return &Set{values: make(map[string]Value, extra)}
	}
	next := &Set{
		values: make(map[string]Value, len(s.values)+extra),
		order:  make([]string, len(s.order), len(s.order)+extra),
	}
	copy(next.order, s.order)
	for k, v := range s.values {
		next.values[k] = v
	}
	return next
}
