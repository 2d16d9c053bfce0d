// Package filterstate keeps filter controls, the page URL and the product
// grid in agreement without reloading the page.
package filterstate

import (
	"net/url"
	"strings"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

// URL parameter names mirrored from ClientFilterState.
const (
	URLVendor = "vendor"
	URLColor  = "color"
	URLSize   = "size"
	URLTag    = "tag"
	URLType   = "type"
	URLMin    = "min"
	URLMax    = "max"
	URLPage   = "page"
)

// ClientFilterState is the selection shown in the filter controls.
// Empty strings mean "all".
type ClientFilterState struct {
	Vendor string
	Color  string
	Size   string
	Tag    string
	Type   string
	Min    string
	Max    string
}

// FromURL reconstructs state from a page URL.
func FromURL(u *url.URL) ClientFilterState {
	q := u.Query()
	return ClientFilterState{
		Vendor: q.Get(URLVendor),
		Color:  q.Get(URLColor),
		Size:   q.Get(URLSize),
		Tag:    q.Get(URLTag),
		Type:   q.Get(URLType),
		Min:    q.Get(URLMin),
		Max:    q.Get(URLMax),
	}
}

// Normalized trims every field.
func (s ClientFilterState) Normalized() ClientFilterState {
	return ClientFilterState{
		Vendor: strings.TrimSpace(s.Vendor),
		Color:  strings.TrimSpace(s.Color),
		Size:   strings.TrimSpace(s.Size),
		Tag:    strings.TrimSpace(s.Tag),
		Type:   strings.TrimSpace(s.Type),
		Min:    strings.TrimSpace(s.Min),
		Max:    strings.TrimSpace(s.Max),
	}
}

// HasActive reports whether any filter is selected.
func (s ClientFilterState) HasActive() bool {
	return s.Normalized() != ClientFilterState{}
}

// URLValues returns the non-empty selections under their URL names.
func (s ClientFilterState) URLValues() url.Values {
	n := s.Normalized()
	v := url.Values{}
	setIf(v, URLVendor, n.Vendor)
	setIf(v, URLColor, n.Color)
	setIf(v, URLSize, n.Size)
	setIf(v, URLTag, n.Tag)
	setIf(v, URLType, n.Type)
	setIf(v, URLMin, n.Min)
	setIf(v, URLMax, n.Max)
	return v
}

// ApplyToURL returns a copy of u whose query is exactly the filter state.
// Pagination and other query parameters are dropped since a new filter
// result starts from the first page.
func (s ClientFilterState) ApplyToURL(u *url.URL) *url.URL {
	out := *u
	out.RawQuery = s.URLValues().Encode()
	out.ForceQuery = false
	return &out
}

// ServerQuery builds the filter endpoint query for a collection.
func (s ClientFilterState) ServerQuery(collectionHandle string) url.Values {
	n := s.Normalized()
	v := url.Values{}
	v.Set(domain.ParamCollectionHandle, collectionHandle)
	setIf(v, domain.ParamColor, n.Color)
	setIf(v, domain.ParamSize, n.Size)
	setIf(v, domain.ParamVendor, n.Vendor)
	setIf(v, domain.ParamTag, n.Tag)
	setIf(v, domain.ParamType, n.Type)
	setIf(v, domain.ParamMinPrice, n.Min)
	setIf(v, domain.ParamMaxPrice, n.Max)
	return v
}

// CollectionHandleFromPath returns <handle> for /collections/<handle>[/...].
func CollectionHandleFromPath(path string) (string, bool) {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) < 2 || parts[0] != "collections" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}
