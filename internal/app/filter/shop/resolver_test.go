package shop

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":                                   "",
		"   ":                                "",
		"demo.myshopify.com":                 "demo.myshopify.com",
		" demo.myshopify.com/ ":              "demo.myshopify.com",
		"/demo.myshopify.com/":               "demo.myshopify.com",
		"https://demo.myshopify.com":         "demo.myshopify.com",
		"https://demo.myshopify.com/admin/x": "demo.myshopify.com",
		"HTTP://demo.myshopify.com?x=1":      "demo.myshopify.com",
		"demo.myshopify.com/collections/all": "demo.myshopify.com",
	}

	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestResolver_DefaultOrder(t *testing.T) {
	r := NewResolver(nil, "fallback.myshopify.com")

	req := httptest.NewRequest(http.MethodGet, "/apps/filter/products?shop=query.myshopify.com", nil)
	req.Header.Set("x-shopify-shop-domain", "https://header.myshopify.com/")

	d, src, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "header.myshopify.com", d)
	assert.Equal(t, SourceHeader, src)

	req = httptest.NewRequest(http.MethodGet, "/apps/filter/products?shop=query.myshopify.com", nil)
	d, src, err = r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "query.myshopify.com", d)
	assert.Equal(t, SourceQuery, src)

	req = httptest.NewRequest(http.MethodGet, "/apps/filter/products", nil)
	d, src, err = r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "fallback.myshopify.com", d)
	assert.Equal(t, SourceFallback, src)
}

func TestResolver_SessionWins(t *testing.T) {
	r := NewResolver(nil, "")

	req := httptest.NewRequest(http.MethodGet, "/?shop=query.myshopify.com", nil)
	req = req.WithContext(WithSessionShop(req.Context(), "session.myshopify.com"))

	d, src, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "session.myshopify.com", d)
	assert.Equal(t, SourceSession, src)
}

func TestResolver_CustomOrder(t *testing.T) {
	order, err := ParseOrder([]string{"query", "header"})
	require.NoError(t, err)
	r := NewResolver(order, "fallback.myshopify.com")

	req := httptest.NewRequest(http.MethodGet, "/?shop=query.myshopify.com", nil)
	req.Header.Set(HeaderShopDomain, "header.myshopify.com")

	d, _, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "query.myshopify.com", d)

	// Fallback is not consulted when it is left out of the order
	_, _, err = r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, domain.ErrMissingShopDomain)
}

func TestResolver_Unresolvable(t *testing.T) {
	r := NewResolver(nil, "  ")

	_, _, err := r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.ErrorIs(t, err, domain.ErrMissingShopDomain)
}

func TestParseOrder(t *testing.T) {
	order, err := ParseOrder(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOrder, order)

	_, err = ParseOrder([]string{"cookie"})
	assert.Error(t, err)
}

func TestResolver_ResolveCandidates(t *testing.T) {
	r := NewResolver([]Source{SourceFallback, SourceHeader}, "fallback.myshopify.com")

	d, src, err := r.ResolveCandidates(Candidates{
		SourceHeader:   "header.myshopify.com",
		SourceFallback: "ignored.myshopify.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "fallback.myshopify.com", d)
	assert.Equal(t, SourceFallback, src)

	r = NewResolver([]Source{SourceHeader, SourceQuery}, "")
	d, src, err = r.ResolveCandidates(Candidates{SourceQuery: "https://q.myshopify.com/"})
	require.NoError(t, err)
	assert.Equal(t, "q.myshopify.com", d)
	assert.Equal(t, SourceQuery, src)
}
