package ast

import "sort"

// TagSet is an unordered set of tag names. Adding a tag twice keeps one member.
// The zero value is not usable; create sets with NewTagSet.
type TagSet map[string]struct{}

// NewTagSet creates a set holding the given tags.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, tag := range tags {
		s[tag] = struct{}{}
	}
	return s
}

// Add inserts a tag into the set.
func (s TagSet) Add(tag string) {
	s[tag] = struct{}{}
}

// Has reports whether the tag is a member of the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Len returns the number of distinct tags.
func (s TagSet) Len() int {
	return len(s)
}

// Sorted returns the members in lexical order.
// Encoders use it so output does not depend on map iteration order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for tag := range s {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the tags present in both sets, sorted.
func (s TagSet) Intersect(other TagSet) []string {
	var out []string
	for tag := range s {
		if other.Has(tag) {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold exactly the same tags.
func (s TagSet) Equal(other TagSet) bool {
	if len(s) != len(other) {
		return false
	}
	for tag := range s {
		if !other.Has(tag) {
			return false
		}
	}
	return true
}
