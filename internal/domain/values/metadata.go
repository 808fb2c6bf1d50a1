package values

import (
	"encoding/json"
	"sort"
	"strings"
)

// StringSet is an unordered set of strings.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given items.
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts item into the set.
func (s StringSet) Add(item string) {
	s[item] = struct{}{}
}

// Has reports membership.
func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the members in lexical order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Difference returns the members of s that are not in other, sorted.
func (s StringSet) Difference(other StringSet) []string {
	var out []string
	for item := range s {
		if !other.Has(item) {
			out = append(out, item)
		}
	}
	sort.Strings(out)
	return out
}

// Union returns a new set holding the members of both sets.
func (s StringSet) Union(other StringSet) StringSet {
	out := make(StringSet, len(s)+len(other))
	for item := range s {
		out.Add(item)
	}
	for item := range other {
		out.Add(item)
	}
	return out
}

// MarshalJSON renders the set as a sorted list.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// MarshalYAML renders the set as a sorted list.
func (s StringSet) MarshalYAML() (interface{}, error) {
	return s.Sorted(), nil
}

// Metadata maps a tag key to the set of values given for it in a document preamble.
type Metadata map[string]StringSet

// Add trims key and value and records the value under the key.
func (m Metadata) Add(key, value string) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	set, ok := m[key]
	if !ok {
		set = StringSet{}
		m[key] = set
	}
	set.Add(value)
}

// Has reports whether the key was set at least once.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Len returns the number of distinct keys.
func (m Metadata) Len() int {
	return len(m)
}

// Keys returns every key, sorted.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeySet returns the keys as a set.
func (m Metadata) KeySet() StringSet {
	s := make(StringSet, len(m))
	for k := range m {
		s.Add(k)
	}
	return s
}

// Values returns the values recorded for key, sorted. Nil if the key is absent.
func (m Metadata) Values(key string) []string {
	set, ok := m[key]
	if !ok {
		return nil
	}
	return set.Sorted()
}

// First returns the lexically first value for key, or "" when absent.
func (m Metadata) First(key string) string {
	vals := m.Values(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
