package m_collection_product

// Field name constants for the collection_products table.
const (
	TableName = "collection_products"

	ShopDomain       = "shop_domain"
	CollectionHandle = "collection_handle"
	ProductHandle    = "product_handle"
	Position         = "position"
)
