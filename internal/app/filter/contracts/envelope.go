package contracts

import (
	"encoding/json"
	"errors"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

// FilterResponse is the JSON envelope returned by every filter transport.
// MarshalJSON picks the success or failure shape from OK; the tags below
// are used when decoding.
type FilterResponse struct {
	OK               bool             `json:"ok"`
	Facets           *domain.FacetSet `json:"facets,omitempty"`
	FilteredHandles  []string         `json:"filteredHandles,omitempty"`
	Shop             string           `json:"shop,omitempty"`
	CollectionHandle string           `json:"collectionHandle,omitempty"`
	Message          string           `json:"message,omitempty"`

	// Top-level copies of the facet lists for older theme scripts.
	*LegacyFacets
}

// LegacyFacets repeats the facet lists at the top level of the envelope.
type LegacyFacets struct {
	Vendors []string `json:"vendors"`
	Tags    []string `json:"tags"`
	Types   []string `json:"types"`
	Colors  []string `json:"colors"`
	Sizes   []string `json:"sizes"`
}

// successBody always carries facets and filteredHandles, even when empty.
type successBody struct {
	OK               bool             `json:"ok"`
	Facets           *domain.FacetSet `json:"facets"`
	FilteredHandles  []string         `json:"filteredHandles"`
	Shop             string           `json:"shop"`
	CollectionHandle string           `json:"collectionHandle"`
	*LegacyFacets
}

type errorBody struct {
	OK               bool   `json:"ok"`
	Message          string `json:"message"`
	Shop             string `json:"shop,omitempty"`
	CollectionHandle string `json:"collectionHandle,omitempty"`
}

// MarshalJSON encodes the success or failure envelope.
func (r FilterResponse) MarshalJSON() ([]byte, error) {
	if !r.OK {
		return json.Marshal(errorBody{
			Message:          r.Message,
			Shop:             r.Shop,
			CollectionHandle: r.CollectionHandle,
		})
	}

	facets := domain.EmptyFacetSet()
	if r.Facets != nil {
		facets = nonNilFacets(*r.Facets)
	}
	handles := r.FilteredHandles
	if handles == nil {
		handles = []string{}
	}
	return json.Marshal(successBody{
		OK:               true,
		Facets:           &facets,
		FilteredHandles:  handles,
		Shop:             r.Shop,
		CollectionHandle: r.CollectionHandle,
		LegacyFacets:     r.LegacyFacets,
	})
}

// NewSuccessResponse builds an ok:true envelope. Nil lists encode as [].
func NewSuccessResponse(shop, collectionHandle string, facets domain.FacetSet, handles []string, legacy bool) *FilterResponse {
	facets = nonNilFacets(facets)
	if handles == nil {
		handles = []string{}
	}

	resp := &FilterResponse{
		OK:               true,
		Facets:           &facets,
		FilteredHandles:  handles,
		Shop:             shop,
		CollectionHandle: collectionHandle,
	}
	if legacy {
		resp.LegacyFacets = &LegacyFacets{
			Vendors: facets.Vendors,
			Tags:    facets.Tags,
			Types:   facets.Types,
			Colors:  facets.Colors,
			Sizes:   facets.Sizes,
		}
	}
	return resp
}

// NewErrorResponse builds an ok:false envelope.
func NewErrorResponse(message, shop, collectionHandle string) *FilterResponse {
	return &FilterResponse{
		OK:               false,
		Message:          message,
		Shop:             shop,
		CollectionHandle: collectionHandle,
	}
}

// ErrorClass groups pipeline errors for status mapping.
type ErrorClass int

const (
	// ClassInternal covers anything unrecognised, including recovered panics.
	ClassInternal ErrorClass = iota
	// ClassInput covers request errors the caller can fix.
	ClassInput
	// ClassCatalog covers catalog collaborator failures.
	ClassCatalog
	// ClassThrottled is set by transports that reject a request before the pipeline runs.
	ClassThrottled
)

// ClassifyError maps a pipeline error onto an ErrorClass.
func ClassifyError(err error) ErrorClass {
	switch {
	case errors.Is(err, domain.ErrMissingCollectionHandle),
		errors.Is(err, domain.ErrMissingShopDomain),
		errors.Is(err, domain.ErrMissingStorefrontToken):
		return ClassInput
	case errors.Is(err, domain.ErrCatalogUnavailable),
		errors.Is(err, domain.ErrCatalogQuery):
		return ClassCatalog
	default:
		return ClassInternal
	}
}

func nonNilFacets(f domain.FacetSet) domain.FacetSet {
	empty := domain.EmptyFacetSet()
	if f.Vendors == nil {
		f.Vendors = empty.Vendors
	}
	if f.Tags == nil {
		f.Tags = empty.Tags
	}
	if f.Types == nil {
		f.Types = empty.Types
	}
	if f.Colors == nil {
		f.Colors = empty.Colors
	}
	if f.Sizes == nil {
		f.Sizes = empty.Sizes
	}
	return f
}
