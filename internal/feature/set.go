package feature

import (
	"sort"
	"strings"
)

// Set is a set of features unique by Key.
// Each entry keeps the display token of the first feature added under that key.
// A nil *Set behaves as an empty set for all read operations.
type Set struct {
	items map[string]Feature
}

// NewSet returns a set holding the given features
func NewSet(features ...Feature) *Set {
	s := &Set{items: make(map[string]Feature, len(features))}
	for _, f := range features {
		s.Add(f)
	}
	return s
}

// ParseSet parses every token; the first malformed token fails the whole set
func ParseSet(tokens []string) (*Set, error) {
	s := NewSet()
	for _, token := range tokens {
		if err := s.AddToken(token); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustParseSet is ParseSet for literals known to be valid
func MustParseSet(tokens ...string) *Set {
	s, err := ParseSet(tokens)
	if err != nil {
		panic(err)
	}
	return s
}

// Add inserts f unless a feature with the same key is present.
// Returns true if the set changed.
func (s *Set) Add(f Feature) bool {
	if s.items == nil {
		s.items = make(map[string]Feature)
	}
	key := f.Key()
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = f
	return true
}

// AddToken parses and inserts a token
func (s *Set) AddToken(token string) error {
	f, err := Parse(strings.TrimSpace(token))
	if err != nil {
		return err
	}
	s.Add(f)
	return nil
}

// AddAll inserts every feature of other
func (s *Set) AddAll(other *Set) {
	for _, f := range other.Features() {
		s.Add(f)
	}
}

// Remove deletes the feature with f's key
func (s *Set) Remove(f Feature) {
	if s == nil || s.items == nil {
		return
	}
	delete(s.items, f.Key())
}

// RemoveAll deletes every feature of other
func (s *Set) RemoveAll(other *Set) {
	for _, f := range other.Features() {
		s.Remove(f)
	}
}

// Has reports whether a feature with f's key is present
func (s *Set) Has(f Feature) bool {
	if s == nil {
		return false
	}
	_, ok := s.items[f.Key()]
	return ok
}

// Len returns the number of features
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// IsEmpty reports whether the set has no features
func (s *Set) IsEmpty() bool {
	return s.Len() == 0
}

// Features returns the features ordered by key
func (s *Set) Features() []Feature {
	if s.Len() == 0 {
		return nil
	}
	out := make([]Feature, 0, len(s.items))
	for _, f := range s.items {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Named returns the features called name (lowercase), ordered by version
func (s *Set) Named(name string) []Feature {
	var out []Feature
	for _, f := range s.Features() {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

// Tokens returns the display tokens ordered by key.
// With lower set the canonical lowercase keys are returned instead.
func (s *Set) Tokens(lower bool) []string {
	features := s.Features()
	out := make([]string, 0, len(features))
	for _, f := range features {
		out = append(out, f.Display(lower))
	}
	return out
}

// Keys returns the canonical keys in order
func (s *Set) Keys() []string {
	return s.Tokens(true)
}

// Clone returns an independent copy
func (s *Set) Clone() *Set {
	return NewSet(s.Features()...)
}

// Union returns the features of s and other; display tokens from s win
func (s *Set) Union(other *Set) *Set {
	out := s.Clone()
	out.AddAll(other)
	return out
}

// Difference returns the features of s whose key is not in other
func (s *Set) Difference(other *Set) *Set {
	out := s.Clone()
	out.RemoveAll(other)
	return out
}

// Equal reports whether both sets hold the same keys
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, f := range s.Features() {
		if !other.Has(f) {
			return false
		}
	}
	return true
}

func (s *Set) String() string {
	return FormatList(s.Tokens(false))
}

// FormatList renders tokens as "[a, b]"
func FormatList(tokens []string) string {
	return "[" + strings.Join(tokens, ", ") + "]"
}
