package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// AllProductsHandle is the collection sentinel meaning "no collection scoping".
// It is never a real catalog handle.
const AllProductsHandle = "all"

// Query parameter names accepted by the filter endpoint.
const (
	ParamCollectionHandle = "collectionHandle"
	ParamVendor           = "vendor"
	ParamTag              = "tag"
	ParamType             = "type"
	ParamColor            = "color"
	ParamSize             = "size"
	ParamMinPrice         = "minPrice"
	ParamMaxPrice         = "maxPrice"
	ParamShop             = "shop"
)

// themeNoiseParams are injected by storefront themes during section hydration.
var themeNoiseParams = []string{"section_id", "sections", "path"}

// FilterParams is the flat set of filter selections for one request.
type FilterParams struct {
	CollectionHandle string
	Vendor           string
	Tag              string
	Type             string
	Color            string
	Size             string
	MinPrice         *float64
	MaxPrice         *float64
}

// ParseFilterParams builds FilterParams from query-string input.
// Theme noise parameters are dropped rather than rejected, and prices that
// are blank, unparsable or non-finite are treated as unset.
func ParseFilterParams(values url.Values) *FilterParams {
	cleaned := make(url.Values, len(values))
	for k, v := range values {
		cleaned[k] = v
	}
	for _, noise := range themeNoiseParams {
		cleaned.Del(noise)
	}

	return &FilterParams{
		CollectionHandle: strings.TrimSpace(cleaned.Get(ParamCollectionHandle)),
		Vendor:           cleaned.Get(ParamVendor),
		Tag:              cleaned.Get(ParamTag),
		Type:             cleaned.Get(ParamType),
		Color:            cleaned.Get(ParamColor),
		Size:             cleaned.Get(ParamSize),
		MinPrice:         ParsePrice(cleaned.Get(ParamMinPrice)),
		MaxPrice:         ParsePrice(cleaned.Get(ParamMaxPrice)),
	}
}

// ParsePrice returns nil for blank, unparsable or non-finite input.
func ParsePrice(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

// Validate checks the inputs the pipeline cannot run without.
func (p *FilterParams) Validate() error {
	if p.CollectionHandle == "" {
		return ErrMissingCollectionHandle
	}
	return nil
}

// IsAllProducts reports whether the request targets the whole catalog.
func (p *FilterParams) IsAllProducts() bool {
	return p.CollectionHandle == AllProductsHandle
}

// WantsColor reports whether local color matching applies.
func (p *FilterParams) WantsColor() bool {
	return NormalizeValue(p.Color) != ""
}

// WantsSize reports whether local size matching applies.
func (p *FilterParams) WantsSize() bool {
	return NormalizeValue(p.Size) != ""
}
