package filter

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
	"github.com/light-bringer/storefront-filters/internal/app/filter/queries/filter_products"
	"github.com/light-bringer/storefront-filters/internal/app/filter/shop"
)

// Handler implements FilterServiceServer on top of the filter query.
type Handler struct {
	query    *filter_products.Query
	resolver *shop.Resolver
	// mapped returns failures as gRPC status errors instead of ok:false envelopes.
	mapped     bool
	legacyKeys bool
	logger     *zap.Logger
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Resolver decides the shop domain; metadata stands in for the proxy
	// header and the request "shop" field for the query parameter.
	// When nil, the default order with FallbackShop is used.
	Resolver        *shop.Resolver
	FallbackShop    string
	MappedErrors    bool
	LegacyFacetKeys bool
}

// NewHandler creates a new gRPC filter handler.
func NewHandler(query *filter_products.Query, opts HandlerOptions, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = shop.NewResolver(nil, opts.FallbackShop)
	}
	return &Handler{
		query:      query,
		resolver:   resolver,
		mapped:     opts.MappedErrors,
		legacyKeys: opts.LegacyFacetKeys,
		logger:     logger,
	}
}

// FilterProducts runs the filter pipeline for one request.
func (h *Handler) FilterProducts(ctx context.Context, req *structpb.Struct) (reply *structpb.Struct, err error) {
	values, err := structToValues(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	params := domain.ParseFilterParams(values)
	shopDomain := h.resolveShop(ctx, values.Get(domain.ParamShop))

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("filter pipeline panicked", zap.Any("panic", rec))
			reply, err = h.failure(fmt.Errorf("unexpected error: %v", rec), shopDomain, params.CollectionHandle)
		}
	}()

	res, err := h.query.Execute(ctx, &filter_products.Request{
		ShopDomain: shopDomain,
		Params:     params,
	})
	if err != nil {
		h.logger.Warn("filter products failed", zap.Error(err), zap.String("shop", shopDomain))
		return h.failure(err, shopDomain, params.CollectionHandle)
	}

	return responseToStruct(contracts.NewSuccessResponse(
		res.ShopDomain,
		res.CollectionHandle,
		res.Facets,
		res.FilteredHandles,
		h.legacyKeys,
	))
}

// resolveShop maps session context, incoming metadata and the request
// field onto the resolver's sources.
func (h *Handler) resolveShop(ctx context.Context, fromRequest string) string {
	session, _ := shop.SessionShop(ctx)
	candidates := shop.Candidates{
		shop.SourceSession: session,
		shop.SourceQuery:   fromRequest,
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(shop.HeaderShopDomain); len(v) > 0 {
			candidates[shop.SourceHeader] = v[0]
		}
	}

	d, _, err := h.resolver.ResolveCandidates(candidates)
	if err != nil {
		return ""
	}
	return d
}

func (h *Handler) failure(err error, shopDomain, collectionHandle string) (*structpb.Struct, error) {
	if h.mapped {
		return nil, mapDomainErrorToGRPC(err)
	}
	return responseToStruct(contracts.NewErrorResponse(err.Error(), shopDomain, collectionHandle))
}
