// Package util contains small generic helpers shared by the kernel's
// packages that do not warrant their own package.
package util

import (
	"sort"
	"strings"
)

// StringSet is a set of strings with the minimal operations the import
// resolver's cycle detector needs.
type StringSet map[string]bool

// NewStringSet creates a StringSet optionally seeded from existing sets.
func NewStringSet(of ...map[string]bool) StringSet {
	s := StringSet{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

// StringSetOf builds a StringSet from a slice.
func StringSetOf(sl []string) StringSet {
	s := StringSet{}
	for _, v := range sl {
		s.Add(v)
	}
	return s
}

// Add adds value to the set. No effect if already present.
func (s StringSet) Add(value string) {
	s[value] = true
}

// Remove removes value from the set. No effect if absent.
func (s StringSet) Remove(value string) {
	delete(s, value)
}

// Has returns whether value is in the set.
func (s StringSet) Has(value string) bool {
	return s[value]
}

// Len returns the number of elements in the set.
func (s StringSet) Len() int {
	return len(s)
}

// Copy returns a shallow copy of the set.
func (s StringSet) Copy() StringSet {
	newS := NewStringSet()
	for k := range s {
		newS[k] = true
	}
	return newS
}

// Elements returns the set's contents in unspecified order.
func (s StringSet) Elements() []string {
	elems := make([]string, 0, len(s))
	for k := range s {
		elems = append(elems, k)
	}
	return elems
}

// StringOrdered shows the contents of the set, alphabetized, for use in
// stable diagnostic messages.
func (s StringSet) StringOrdered() string {
	elems := s.Elements()
	sort.Strings(elems)

	var sb strings.Builder
	sb.WriteRune('{')
	sb.WriteString(strings.Join(elems, ", "))
	sb.WriteRune('}')
	return sb.String()
}
