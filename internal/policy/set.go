// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

import "strings"

// Set is a set of checkpatch message types that keeps insertion order,
// so the --ignore argument is stable from run to run.
type Set struct {
	items []string
	seen  map[string]struct{}
}

// NewSet returns a set holding items.
func NewSet(items ...string) *Set {
	s := &Set{seen: make(map[string]struct{}, len(items))}
	s.Add(items...)
	return s
}

// Add inserts items not already present. Empty strings are ignored.
func (s *Set) Add(items ...string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{}, len(items))
	}
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := s.seen[item]; ok {
			continue
		}
		s.seen[item] = struct{}{}
		s.items = append(s.items, item)
	}
}

func (s *Set) Contains(item string) bool {
	_, ok := s.seen[item]
	return ok
}

func (s *Set) Len() int { return len(s.items) }

// Items returns a copy of the members in insertion order.
func (s *Set) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// String is the comma-joined form passed to checkpatch.pl --ignore.
func (s *Set) String() string {
	return strings.Join(s.items, ",")
}
