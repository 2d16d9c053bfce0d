// Package searchquery builds storefront catalog search queries.
//
// Terms are joined by spaces, which the storefront search grammar treats as
// an implicit AND. Values that could confuse the grammar's tokenizer are
// quoted; Tokenize reverses the process.
package searchquery

import (
	"strings"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

// Field names understood by the storefront search grammar.
const (
	FieldVendor      = "vendor"
	FieldProductType = "product_type"
	FieldTag         = "tag"
	FieldPrice       = "price"
)

// Builder constructs a search query string with a fluent, immutable API.
type Builder struct {
	conditions []Condition
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{conditions: []Condition{}}
}

// Where adds a condition. Multiple calls are combined with AND logic.
func (b *Builder) Where(condition Condition) *Builder {
	newBuilder := b.clone()
	newBuilder.conditions = append(newBuilder.conditions, condition)
	return newBuilder
}

// Build renders the query. ok is false when no condition contributes a
// term, which callers pass on as a null query meaning "unfiltered".
func (b *Builder) Build() (query string, ok bool) {
	terms := make([]string, 0, len(b.conditions))
	for _, c := range b.conditions {
		if term, ok := c.Term(); ok {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return "", false
	}
	return strings.Join(terms, " "), true
}

// BuildPtr is Build returning nil for an unfiltered query.
func (b *Builder) BuildPtr() *string {
	q, ok := b.Build()
	if !ok {
		return nil
	}
	return &q
}

func (b *Builder) clone() *Builder {
	newBuilder := &Builder{conditions: make([]Condition, len(b.conditions))}
	copy(newBuilder.conditions, b.conditions)
	return newBuilder
}

// String returns the query or "<unfiltered>" for debugging.
func (b *Builder) String() string {
	if q, ok := b.Build(); ok {
		return q
	}
	return "<unfiltered>"
}

// FromParams maps vendor, type, tag and price bounds to search terms.
// Color and size are left to local option matching after the fetch.
func FromParams(p *domain.FilterParams) *Builder {
	return New().
		Where(Field(FieldVendor, p.Vendor)).
		Where(Field(FieldProductType, p.Type)).
		Where(Field(FieldTag, p.Tag)).
		Where(Range(FieldPrice, Gte, p.MinPrice)).
		Where(Range(FieldPrice, Lte, p.MaxPrice))
}

// Build is shorthand for FromParams(p).BuildPtr().
func Build(p *domain.FilterParams) *string {
	return FromParams(p).BuildPtr()
}
