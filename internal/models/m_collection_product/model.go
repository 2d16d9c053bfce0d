package m_collection_product

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the collection_products table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation that upserts a collection membership.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		[]string{ShopDomain, CollectionHandle, ProductHandle, Position},
		[]interface{}{data.ShopDomain, data.CollectionHandle, data.ProductHandle, data.Position},
	)
}

// DeleteShopMut removes every collection membership mirrored for a shop.
func (m *Model) DeleteShopMut(shopDomain string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{shopDomain}.AsPrefix())
}
