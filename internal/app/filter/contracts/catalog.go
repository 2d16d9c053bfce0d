package contracts

import (
	"context"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

// DefaultPageSize is the number of products requested per catalog fetch.
const DefaultPageSize = 250

// FetchRequest describes one catalog query.
type FetchRequest struct {
	ShopDomain       string
	CollectionHandle string
	// Query is the storefront search query; nil means unfiltered.
	Query *string
	// Params carries the raw selections for backends that filter natively.
	Params *domain.FilterParams
	First  int
}

// CatalogFetcher defines the collaborator that returns raw product records.
// A missing collection or empty catalog yields zero records, not an error.
type CatalogFetcher interface {
	// FetchProducts runs a single query against the whole catalog or one collection
	FetchProducts(ctx context.Context, req *FetchRequest) ([]*domain.ProductRecord, error)
}
