// Package selection implements the permission selection model used by the
// role editors: a set of permission keys plus pure group-level aggregation
// over the catalog's permission groups.
package selection

import "sort"

// Set is a set of permission keys.
type Set map[string]struct{}

// NewSet returns an empty Set.
func NewSet() Set {
	return make(Set)
}

// FromKeys builds a Set from a slice of keys, collapsing duplicates.
func FromKeys(keys []string) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Len returns the number of keys in the set.
func (s Set) Len() int {
	return len(s)
}

// Keys returns the set members sorted, so payloads and assertions are stable.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Equal reports whether two sets contain exactly the same keys.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}
