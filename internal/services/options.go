package services

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/spanner"
	"go.uber.org/zap"

	"github.com/light-bringer/storefront-filters/internal/app/filter/catalog/storefront"
	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	filtersvc "github.com/light-bringer/storefront-filters/internal/app/filter/domain/services"
	"github.com/light-bringer/storefront-filters/internal/app/filter/queries/filter_products"
	"github.com/light-bringer/storefront-filters/internal/app/filter/repo"
	"github.com/light-bringer/storefront-filters/internal/app/filter/shop"
	"github.com/light-bringer/storefront-filters/internal/config"
	"github.com/light-bringer/storefront-filters/internal/pkg/clock"
	"github.com/light-bringer/storefront-filters/internal/transport/grpc/filter"
	httphandler "github.com/light-bringer/storefront-filters/internal/transport/http"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	SpannerClient *spanner.Client
	FilterQuery   *filter_products.Query
	HTTPHandler   http.Handler
	FilterHandler *filter.Handler
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ServiceOptions, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := &ServiceOptions{}

	// 1. Catalog backend
	fetcher, err := opts.newFetcher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// 2. Domain services and queries
	scope, err := filtersvc.ParseFacetScope(cfg.Filter.FacetScope)
	if err != nil {
		opts.Close()
		return nil, err
	}
	aggregator := filtersvc.NewFacetAggregator(scope)
	opts.FilterQuery = filter_products.NewQuery(fetcher, aggregator, logger.Named("filter"))

	// 3. HTTP transport
	order, err := shop.ParseOrder(cfg.Storefront.ShopSources)
	if err != nil {
		opts.Close()
		return nil, err
	}
	policy, err := httphandler.ParseStatusPolicy(cfg.Filter.ErrorStatusPolicy)
	if err != nil {
		opts.Close()
		return nil, err
	}
	resolver := shop.NewResolver(order, cfg.Storefront.StoreDomain)
	filterHTTP := httphandler.NewFilterHandler(opts.FilterQuery, resolver, httphandler.FilterHandlerOptions{
		Policy:          policy,
		LegacyFacetKeys: cfg.Filter.LegacyFacetKeys,
	}, logger.Named("http"))

	var limiter *httphandler.RateLimiter
	if cfg.Server.RateLimit.Enabled {
		limiter = httphandler.NewRateLimiter(httphandler.RateLimiterOptions{
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
			Policy:            policy,
			TrustForwardedFor: cfg.Server.RateLimit.TrustForwardedFor,
			Clock:             clock.NewRealClock(),
		})
	}
	opts.HTTPHandler = httphandler.NewRouter(filterHTTP, httphandler.RouterOptions{
		Routes:             cfg.Server.Routes,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Development:        cfg.IsDevelopment(),
		RateLimiter:        limiter,
	}, logger.Named("http"))

	// 4. gRPC transport
	opts.FilterHandler = filter.NewHandler(opts.FilterQuery, filter.HandlerOptions{
		Resolver:        resolver,
		MappedErrors:    policy == httphandler.StatusMapped,
		LegacyFacetKeys: cfg.Filter.LegacyFacetKeys,
	}, logger.Named("grpc"))

	return opts, nil
}

func (s *ServiceOptions) newFetcher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (contracts.CatalogFetcher, error) {
	switch cfg.Catalog.Backend {
	case "", config.BackendStorefront:
		return storefront.NewClient(storefront.Options{
			AccessToken: cfg.Storefront.AccessToken,
			APIVersion:  cfg.Storefront.APIVersion,
			Timeout:     cfg.GetStorefrontTimeout(),
		}, logger.Named("storefront")), nil
	case config.BackendSpanner:
		client, err := spanner.NewClient(ctx, cfg.Catalog.SpannerDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to create Spanner client: %w", err)
		}
		s.SpannerClient = client
		return repo.NewCatalogReadModel(client), nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
