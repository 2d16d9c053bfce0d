package services

import (
	"fmt"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

// FacetScope selects which records contribute facet values.
type FacetScope string

const (
	// FacetScopeCatalog collects facets from every fetched record, matching or not.
	FacetScopeCatalog FacetScope = "catalog"
	// FacetScopeMatched collects facets only from records that pass local option matching.
	FacetScopeMatched FacetScope = "matched"
)

// ParseFacetScope maps a configuration string to a FacetScope.
// An empty string selects FacetScopeCatalog.
func ParseFacetScope(s string) (FacetScope, error) {
	switch FacetScope(s) {
	case "", FacetScopeCatalog:
		return FacetScopeCatalog, nil
	case FacetScopeMatched:
		return FacetScopeMatched, nil
	default:
		return "", fmt.Errorf("unknown facet scope %q", s)
	}
}

// AggregateResult is the outcome of one aggregation pass.
type AggregateResult struct {
	Facets          domain.FacetSet
	FilteredHandles []string
}

// FacetAggregator is a domain service that builds facets and performs the
// color/size matching the catalog search grammar cannot express.
type FacetAggregator struct {
	scope FacetScope
}

// NewFacetAggregator creates a new FacetAggregator.
func NewFacetAggregator(scope FacetScope) *FacetAggregator {
	if scope == "" {
		scope = FacetScopeCatalog
	}
	return &FacetAggregator{scope: scope}
}

// Scope returns the configured facet scope.
func (fa *FacetAggregator) Scope() FacetScope {
	return fa.scope
}

// Aggregate makes a single pass over records. Handles keep catalog order.
func (fa *FacetAggregator) Aggregate(records []*domain.ProductRecord, params *domain.FilterParams) AggregateResult {
	vendors := domain.NewValueSet()
	tags := domain.NewValueSet()
	types := domain.NewValueSet()
	colors := domain.NewValueSet()
	sizes := domain.NewValueSet()

	handles := make([]string, 0, len(records))

	for _, p := range records {
		if p == nil {
			continue
		}

		match := fa.Matches(p, params)

		if fa.scope == FacetScopeCatalog || match {
			vendors.Add(p.Vendor)
			types.Add(p.ProductType)
			tags.AddAll(p.Tags)

			for _, opt := range p.Options {
				if domain.ColorAliases.Matches(opt.Name) {
					colors.AddAll(opt.Values)
				}
				if domain.SizeAliases.Matches(opt.Name) {
					sizes.AddAll(opt.Values)
				}
			}
		}

		if match && p.Handle != "" {
			handles = append(handles, p.Handle)
		}
	}

	return AggregateResult{
		Facets: domain.FacetSet{
			Vendors: vendors.Sorted(),
			Tags:    tags.Sorted(),
			Types:   types.Sorted(),
			Colors:  colors.Sorted(),
			Sizes:   sizes.Sorted(),
		},
		FilteredHandles: handles,
	}
}

// Matches applies local color/size matching. Unset wants always match.
func (fa *FacetAggregator) Matches(p *domain.ProductRecord, params *domain.FilterParams) bool {
	if params == nil {
		return true
	}
	if params.WantsColor() && !p.HasOptionValue(domain.ColorAliases, params.Color) {
		return false
	}
	if params.WantsSize() && !p.HasOptionValue(domain.SizeAliases, params.Size) {
		return false
	}
	return true
}
