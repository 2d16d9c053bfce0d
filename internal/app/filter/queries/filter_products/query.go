package filter_products

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain/services"
	"github.com/light-bringer/storefront-filters/internal/pkg/searchquery"
)

// Request carries parsed selections and the already-resolved shop domain.
type Request struct {
	ShopDomain string
	Params     *domain.FilterParams
}

// Result is the outcome of one filter run.
type Result struct {
	ShopDomain       string
	CollectionHandle string
	Facets           domain.FacetSet
	FilteredHandles  []string
}

// Query handles the filter products use case.
type Query struct {
	fetcher    contracts.CatalogFetcher
	aggregator *services.FacetAggregator
	pageSize   int
	logger     *zap.Logger
}

// NewQuery creates a new filter products query.
func NewQuery(fetcher contracts.CatalogFetcher, aggregator *services.FacetAggregator, logger *zap.Logger) *Query {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Query{
		fetcher:    fetcher,
		aggregator: aggregator,
		pageSize:   contracts.DefaultPageSize,
		logger:     logger,
	}
}

// Execute fetches one page of the catalog, applies local option matching
// and aggregates facets.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.Params == nil {
		return nil, domain.ErrMissingCollectionHandle
	}
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	if req.ShopDomain == "" {
		return nil, domain.ErrMissingShopDomain
	}

	search := searchquery.Build(req.Params)

	records, err := q.fetcher.FetchProducts(ctx, &contracts.FetchRequest{
		ShopDomain:       req.ShopDomain,
		CollectionHandle: req.Params.CollectionHandle,
		Query:            search,
		Params:           req.Params,
		First:            q.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch products for %s/%s: %w", req.ShopDomain, req.Params.CollectionHandle, err)
	}

	agg := q.aggregator.Aggregate(records, req.Params)

	q.logger.Debug("filter products",
		zap.String("shop", req.ShopDomain),
		zap.String("collection", req.Params.CollectionHandle),
		zap.Stringp("query", search),
		zap.Int("fetched", len(records)),
		zap.Int("matched", len(agg.FilteredHandles)),
	)

	return &Result{
		ShopDomain:       req.ShopDomain,
		CollectionHandle: req.Params.CollectionHandle,
		Facets:           agg.Facets,
		FilteredHandles:  agg.FilteredHandles,
	}, nil
}
