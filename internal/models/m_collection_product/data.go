package m_collection_product

// Data represents one product's membership in a collection.
type Data struct {
	ShopDomain       string `spanner:"shop_domain"`
	CollectionHandle string `spanner:"collection_handle"`
	ProductHandle    string `spanner:"product_handle"`
	Position         int64  `spanner:"position"`
}
