package m_catalog_product

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the catalog_products table.
// Options are stored as the JSON encoding of []domain.Option.
type Data struct {
	ShopDomain  string               `spanner:"shop_domain"`
	Handle      string               `spanner:"handle"`
	Vendor      spanner.NullString   `spanner:"vendor"`
	ProductType spanner.NullString   `spanner:"product_type"`
	Tags        []spanner.NullString `spanner:"tags"`
	OptionsJSON spanner.NullString   `spanner:"options_json"`
	MinPrice    spanner.NullFloat64  `spanner:"min_price"`
	MaxPrice    spanner.NullFloat64  `spanner:"max_price"`
	UpdatedAt   time.Time            `spanner:"updated_at"`
}
