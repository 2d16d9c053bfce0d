package repo

import (
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
	"github.com/light-bringer/storefront-filters/internal/models/m_catalog_product"
)

const selectList = "SELECT p.shop_domain, p.handle, p.vendor, p.product_type, p.tags, p.options_json, p.min_price, p.max_price, p.updated_at "

func TestBuildCatalogStatement_AllNeverJoinsCollection(t *testing.T) {
	stmt := BuildCatalogStatement(&contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: domain.AllProductsHandle,
	})

	assert.Equal(t,
		selectList+"FROM catalog_products p WHERE p.shop_domain = @p0 ORDER BY p.handle ASC LIMIT @limit",
		stmt.SQL)
	assert.NotContains(t, stmt.SQL, "collection_products")
	assert.Equal(t, map[string]interface{}{
		"p0":    "demo.myshopify.com",
		"limit": int64(250),
	}, stmt.Params)
}

func TestBuildCatalogStatement_CollectionScoped(t *testing.T) {
	stmt := BuildCatalogStatement(&contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: "shirts",
		First:            10,
	})

	assert.Equal(t,
		selectList+"FROM catalog_products p "+
			"JOIN collection_products c ON c.shop_domain = p.shop_domain AND c.product_handle = p.handle "+
			"WHERE p.shop_domain = @p0 AND c.collection_handle = @p1 ORDER BY c.position ASC, p.handle ASC LIMIT @limit",
		stmt.SQL)
	assert.Equal(t, "shirts", stmt.Params["p1"])
	assert.Equal(t, int64(10), stmt.Params["limit"])
}

func TestBuildCatalogStatement_NativeFilters(t *testing.T) {
	minP, maxP := 10.0, 20.0
	stmt := BuildCatalogStatement(&contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: "all",
		Params: &domain.FilterParams{
			Vendor:   " Acme ",
			Type:     "Shirt",
			Tag:      "summer",
			Color:    "Blue",
			MinPrice: &minP,
			MaxPrice: &maxP,
		},
	})

	assert.Contains(t, stmt.SQL, "LOWER(p.vendor) = LOWER(@p1)")
	assert.Contains(t, stmt.SQL, "LOWER(p.product_type) = LOWER(@p2)")
	assert.Contains(t, stmt.SQL, "@p3 IN UNNEST(p.tags)")
	assert.Contains(t, stmt.SQL, "p.max_price >= @p4")
	assert.Contains(t, stmt.SQL, "p.min_price <= @p5")
	assert.Equal(t, "Acme", stmt.Params["p1"])
	assert.Equal(t, 10.0, stmt.Params["p4"])
	assert.Equal(t, 20.0, stmt.Params["p5"])
	assert.NotContains(t, stmt.SQL, "Blue")
	assert.NotContains(t, stmt.Params, "p6")
}

func TestDataToRecord(t *testing.T) {
	data := &m_catalog_product.Data{
		ShopDomain:  "demo.myshopify.com",
		Handle:      "tee",
		Vendor:      spanner.NullString{StringVal: "Acme", Valid: true},
		Tags:        []spanner.NullString{{StringVal: "a", Valid: true}, {}},
		OptionsJSON: spanner.NullString{StringVal: `[{"name":"Color","values":["Red","Blue"]}]`, Valid: true},
		UpdatedAt:   time.Now(),
	}

	record, err := dataToRecord(data)

	require.NoError(t, err)
	assert.Equal(t, "tee", record.Handle)
	assert.Equal(t, "Acme", record.Vendor)
	assert.Empty(t, record.ProductType)
	assert.Equal(t, []string{"a"}, record.Tags)
	assert.Equal(t, []domain.Option{{Name: "Color", Values: []string{"Red", "Blue"}}}, record.Options)
}

func TestDataToRecord_InvalidOptions(t *testing.T) {
	_, err := dataToRecord(&m_catalog_product.Data{
		Handle:      "tee",
		OptionsJSON: spanner.NullString{StringVal: "{", Valid: true},
	})

	assert.Error(t, err)
}
