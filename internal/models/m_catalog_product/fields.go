package m_catalog_product

// Field name constants for the catalog_products table.
const (
	TableName = "catalog_products"

	ShopDomain  = "shop_domain"
	Handle      = "handle"
	Vendor      = "vendor"
	ProductType = "product_type"
	Tags        = "tags"
	OptionsJSON = "options_json"
	MinPrice    = "min_price"
	MaxPrice    = "max_price"
	UpdatedAt   = "updated_at"
)

// Columns lists every column in the order Data declares them.
func Columns() []string {
	return []string{
		ShopDomain,
		Handle,
		Vendor,
		ProductType,
		Tags,
		OptionsJSON,
		MinPrice,
		MaxPrice,
		UpdatedAt,
	}
}
