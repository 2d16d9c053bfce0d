package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

func shirtsCatalog() []*domain.ProductRecord {
	return []*domain.ProductRecord{
		{
			Handle:      "linen-shirt",
			Vendor:      "Acme",
			ProductType: "Shirt",
			Tags:        []string{"summer", "linen"},
			Options: []domain.Option{
				{Name: "Color", Values: []string{"Blue", "Red"}},
				{Name: "Size", Values: []string{"M"}},
			},
		},
		{
			Handle:      "oxford-shirt",
			Vendor:      "Bolt",
			ProductType: "Shirt",
			Tags:        []string{"office"},
			Options: []domain.Option{
				{Name: " colour ", Values: []string{"White", "Blue"}},
				{Name: "Size", Values: []string{"L", "XL"}},
			},
		},
		{
			Handle:      "flannel-shirt",
			Vendor:      "Acme",
			ProductType: "Overshirt",
			Tags:        []string{"winter"},
			Options: []domain.Option{
				{Name: "Color", Values: []string{"Green"}},
				{Name: "Size", Values: []string{"M", "L"}},
			},
		},
	}
}

func TestFacetAggregator_NoFilters(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeCatalog)

	res := fa.Aggregate(shirtsCatalog(), &domain.FilterParams{CollectionHandle: "shirts"})

	assert.Equal(t, []string{"linen-shirt", "oxford-shirt", "flannel-shirt"}, res.FilteredHandles)

	want := domain.FacetSet{
		Vendors: []string{"Acme", "Bolt"},
		Tags:    []string{"linen", "office", "summer", "winter"},
		Types:   []string{"Overshirt", "Shirt"},
		Colors:  []string{"Blue", "Green", "Red", "White"},
		Sizes:   []string{"L", "M", "XL"},
	}
	if diff := cmp.Diff(want, res.Facets); diff != "" {
		t.Errorf("facets mismatch (-want +got):\n%s", diff)
	}
}

func TestFacetAggregator_ColorAndSize(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeCatalog)

	res := fa.Aggregate(shirtsCatalog(), &domain.FilterParams{
		CollectionHandle: "shirts",
		Color:            "blue",
		Size:             "M",
	})

	assert.Equal(t, []string{"linen-shirt"}, res.FilteredHandles)
	// Catalog scope keeps facets describing the whole browsable set
	assert.Equal(t, []string{"Blue", "Green", "Red", "White"}, res.Facets.Colors)
}

func TestFacetAggregator_MatchingIsCaseAndWhitespaceInsensitive(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeCatalog)

	a := fa.Aggregate(shirtsCatalog(), &domain.FilterParams{Color: "Red"})
	b := fa.Aggregate(shirtsCatalog(), &domain.FilterParams{Color: "  red "})

	assert.Equal(t, a.FilteredHandles, b.FilteredHandles)
	assert.Equal(t, []string{"linen-shirt"}, a.FilteredHandles)
}

func TestFacetAggregator_ExactMatchNotSubstring(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeCatalog)

	res := fa.Aggregate(shirtsCatalog(), &domain.FilterParams{Size: "X"})

	assert.Empty(t, res.FilteredHandles)
}

func TestFacetAggregator_ColourAlias(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeCatalog)

	res := fa.Aggregate(shirtsCatalog(), &domain.FilterParams{Color: "white"})

	assert.Equal(t, []string{"oxford-shirt"}, res.FilteredHandles)
}

func TestFacetAggregator_MatchedScope(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeMatched)

	res := fa.Aggregate(shirtsCatalog(), &domain.FilterParams{Size: "m"})

	assert.Equal(t, []string{"linen-shirt", "flannel-shirt"}, res.FilteredHandles)
	assert.Equal(t, []string{"Acme"}, res.Facets.Vendors)
	assert.Equal(t, []string{"Blue", "Green", "Red"}, res.Facets.Colors)
	assert.Equal(t, []string{"L", "M"}, res.Facets.Sizes)
}

func TestFacetAggregator_EmptyCatalog(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeCatalog)

	res := fa.Aggregate(nil, &domain.FilterParams{CollectionHandle: "missing"})

	assert.NotNil(t, res.FilteredHandles)
	assert.Empty(t, res.FilteredHandles)
	assert.Empty(t, res.Facets.Vendors)
	assert.NotNil(t, res.Facets.Colors)
}

func TestFacetAggregator_SkipsNilRecordsAndBlankValues(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeCatalog)

	records := []*domain.ProductRecord{
		nil,
		{Handle: "a", Vendor: "  ", Tags: []string{"", "x", "x", " x "}},
		{Handle: "", Vendor: "Ghost"},
	}

	res := fa.Aggregate(records, &domain.FilterParams{})

	assert.Equal(t, []string{"a"}, res.FilteredHandles)
	assert.Equal(t, []string{"x"}, res.Facets.Tags)
	assert.Equal(t, []string{"Ghost"}, res.Facets.Vendors)
}

func TestFacetAggregator_FacetsSortedAndDeduplicated(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeCatalog)

	records := []*domain.ProductRecord{
		{Handle: "1", Tags: []string{"zeta", "Alpha", "éclair", "beta", "alpha", "Beta", "zeta"}},
		{Handle: "2", Tags: []string{"eclair", "Zulu", "alpha"}},
	}

	res := fa.Aggregate(records, &domain.FilterParams{})
	tags := res.Facets.Tags

	seen := map[string]bool{}
	for i, tag := range tags {
		require.False(t, seen[tag], "duplicate facet value %q", tag)
		seen[tag] = true
		if i > 0 {
			assert.LessOrEqual(t, domain.CompareFacetValues(tags[i-1], tag), 0, "%q before %q", tags[i-1], tag)
		}
	}
	assert.Len(t, tags, 8)
}

func TestFacetAggregator_HandlesAreSubsetInFetchOrder(t *testing.T) {
	fa := NewFacetAggregator(FacetScopeCatalog)
	records := shirtsCatalog()

	res := fa.Aggregate(records, &domain.FilterParams{Size: "L"})

	idx := map[string]int{}
	for i, r := range records {
		idx[r.Handle] = i
	}
	last := -1
	for _, h := range res.FilteredHandles {
		i, ok := idx[h]
		require.True(t, ok, "handle %q was not fetched", h)
		assert.Greater(t, i, last)
		last = i
	}
	assert.Equal(t, []string{"oxford-shirt", "flannel-shirt"}, res.FilteredHandles)
}

func TestParseFacetScope(t *testing.T) {
	s, err := ParseFacetScope("")
	require.NoError(t, err)
	assert.Equal(t, FacetScopeCatalog, s)

	s, err = ParseFacetScope("matched")
	require.NoError(t, err)
	assert.Equal(t, FacetScopeMatched, s)

	_, err = ParseFacetScope("filtered")
	assert.Error(t, err)
}
