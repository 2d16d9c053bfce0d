package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

func TestCatalogWriter_ReplaceShopPlan(t *testing.T) {
	w := NewCatalogWriter()
	price := 12.5

	plan, err := w.ReplaceShopPlan("demo.myshopify.com", []MirrorProduct{
		{ProductRecord: domain.ProductRecord{Handle: "red-shirt", Vendor: "Acme", Tags: []string{"summer"}}, MinPrice: &price, MaxPrice: &price},
		{ProductRecord: domain.ProductRecord{Handle: "blue-shirt"}},
	}, map[string][]string{
		"shirts": {"blue-shirt", "red-shirt"},
	})

	require.NoError(t, err)
	// 2 shop deletes + 2 products + 2 memberships
	assert.Equal(t, 6, plan.Count())
}

func TestCatalogWriter_Rejects(t *testing.T) {
	w := NewCatalogWriter()

	_, err := w.ReplaceShopPlan("", nil, nil)
	assert.ErrorIs(t, err, domain.ErrMissingShopDomain)

	_, err = w.ReplaceShopPlan("s", []MirrorProduct{{}}, nil)
	assert.Error(t, err)

	_, err = w.ReplaceShopPlan("s", nil, map[string][]string{"shirts": {"ghost"}})
	assert.ErrorContains(t, err, "ghost")
}

func TestRecordToData_RoundTrip(t *testing.T) {
	p := &MirrorProduct{ProductRecord: domain.ProductRecord{
		Handle:      "tee",
		Vendor:      "Acme",
		ProductType: "Shirt",
		Tags:        []string{"a", "b"},
		Options:     []domain.Option{{Name: "Size", Values: []string{"M"}}},
	}}

	data, err := recordToData("s", p)
	require.NoError(t, err)
	assert.False(t, data.MinPrice.Valid)

	back, err := dataToRecord(data)
	require.NoError(t, err)
	assert.Equal(t, &p.ProductRecord, back)
}
