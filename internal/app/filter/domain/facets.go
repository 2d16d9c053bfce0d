package domain

import (
	"bytes"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FacetSet holds the enumerable values for each filter dimension.
type FacetSet struct {
	Vendors []string `json:"vendors"`
	Tags    []string `json:"tags"`
	Types   []string `json:"types"`
	Colors  []string `json:"colors"`
	Sizes   []string `json:"sizes"`
}

// EmptyFacetSet returns a FacetSet whose lists encode as [] rather than null.
func EmptyFacetSet() FacetSet {
	return FacetSet{
		Vendors: []string{},
		Tags:    []string{},
		Types:   []string{},
		Colors:  []string{},
		Sizes:   []string{},
	}
}

// ValueSet accumulates distinct facet values.
// Values are trimmed; blanks are dropped; comparison is case-sensitive.
type ValueSet struct {
	seen map[string]struct{}
}

// NewValueSet creates an empty ValueSet.
func NewValueSet() *ValueSet {
	return &ValueSet{seen: make(map[string]struct{})}
}

// Add records v if it is non-blank.
func (s *ValueSet) Add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	s.seen[v] = struct{}{}
}

// AddAll records every value.
func (s *ValueSet) AddAll(values []string) {
	for _, v := range values {
		s.Add(v)
	}
}

// Len returns the number of distinct values.
func (s *ValueSet) Len() int {
	return len(s.seen)
}

// Sorted returns the distinct values in locale collation order.
func (s *ValueSet) Sorted() []string {
	out := make([]string, 0, len(s.seen))
	for v := range s.seen {
		out = append(out, v)
	}
	SortFacetValues(out)
	return out
}

// SortFacetValues sorts values in place using root-locale collation.
// Values that collate equal fall back to byte order so output is stable.
func SortFacetValues(values []string) {
	c := collate.New(language.Und)
	buf := &collate.Buffer{}
	keys := make(map[string][]byte, len(values))
	for _, v := range values {
		keys[v] = append([]byte(nil), c.KeyFromString(buf, v)...)
		buf.Reset()
	}
	slices.SortFunc(values, func(a, b string) int {
		if r := bytes.Compare(keys[a], keys[b]); r != 0 {
			return r
		}
		return strings.Compare(a, b)
	})
}

// CompareFacetValues compares two values with the same ordering SortFacetValues uses.
func CompareFacetValues(a, b string) int {
	c := collate.New(language.Und)
	if r := c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}
