package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

func TestNewSuccessResponse_JSONShape(t *testing.T) {
	resp := NewSuccessResponse("demo.myshopify.com", "shirts", domain.FacetSet{Vendors: []string{"Acme"}}, nil, false)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, true, body["ok"])
	assert.Equal(t, []any{}, body["filteredHandles"])
	assert.Equal(t, "demo.myshopify.com", body["shop"])
	assert.Equal(t, "shirts", body["collectionHandle"])
	assert.NotContains(t, body, "message")
	assert.NotContains(t, body, "vendors")

	facets := body["facets"].(map[string]any)
	assert.Equal(t, []any{"Acme"}, facets["vendors"])
	assert.Equal(t, []any{}, facets["sizes"])
}

func TestNewSuccessResponse_EmptyResultKeepsHandles(t *testing.T) {
	raw, err := json.Marshal(NewSuccessResponse("s", "shirts", domain.FacetSet{}, []string{}, false))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"ok": true,
		"facets": {"vendors": [], "tags": [], "types": [], "colors": [], "sizes": []},
		"filteredHandles": [],
		"shop": "s",
		"collectionHandle": "shirts"
	}`, string(raw))
}

func TestFilterResponse_MarshalsByValueAndZeroFacets(t *testing.T) {
	raw, err := json.Marshal(FilterResponse{OK: true, Shop: "s", CollectionHandle: "all"})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, []any{}, body["filteredHandles"])
	assert.Equal(t, []any{}, body["facets"].(map[string]any)["colors"])

	var decoded FilterResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.OK)
	assert.Equal(t, []string{}, decoded.FilteredHandles)
}

func TestNewSuccessResponse_LegacyKeys(t *testing.T) {
	resp := NewSuccessResponse("s", "all", domain.FacetSet{Colors: []string{"Red"}}, []string{"a"}, true)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, []any{"Red"}, body["colors"])
	assert.Equal(t, []any{}, body["vendors"])
	assert.Equal(t, []any{"a"}, body["filteredHandles"])
}

func TestNewErrorResponse_JSONShape(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse("missing collectionHandle", "", ""))
	require.NoError(t, err)

	assert.JSONEq(t, `{"ok":false,"message":"missing collectionHandle"}`, string(raw))
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ClassInput, ClassifyError(domain.ErrMissingCollectionHandle))
	assert.Equal(t, ClassInput, ClassifyError(fmt.Errorf("wrap: %w", domain.ErrMissingShopDomain)))
	assert.Equal(t, ClassInput, ClassifyError(domain.ErrMissingStorefrontToken))
	assert.Equal(t, ClassCatalog, ClassifyError(fmt.Errorf("fetch: %w", domain.ErrCatalogUnavailable)))
	assert.Equal(t, ClassCatalog, ClassifyError(domain.ErrCatalogQuery))
	assert.Equal(t, ClassInternal, ClassifyError(errors.New("boom")))
}
