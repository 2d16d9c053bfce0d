package m_catalog_product

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the catalog_products table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation that upserts a catalog product.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		Columns(),
		[]interface{}{
			data.ShopDomain,
			data.Handle,
			data.Vendor,
			data.ProductType,
			data.Tags,
			data.OptionsJSON,
			data.MinPrice,
			data.MaxPrice,
			spanner.CommitTimestamp,
		},
	)
}

// DeleteShopMut removes every product mirrored for a shop.
func (m *Model) DeleteShopMut(shopDomain string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{shopDomain}.AsPrefix())
}
