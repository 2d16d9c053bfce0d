package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
	"github.com/light-bringer/storefront-filters/internal/app/filter/queries/filter_products"
	"github.com/light-bringer/storefront-filters/internal/app/filter/shop"
)

// FilterHandler serves the storefront filter endpoint.
type FilterHandler struct {
	query      *filter_products.Query
	resolver   *shop.Resolver
	policy     StatusPolicy
	legacyKeys bool
	logger     *zap.Logger
}

// FilterHandlerOptions configures a FilterHandler.
type FilterHandlerOptions struct {
	Policy          StatusPolicy
	LegacyFacetKeys bool
}

// NewFilterHandler creates a new HTTP filter handler.
func NewFilterHandler(query *filter_products.Query, resolver *shop.Resolver, opts FilterHandlerOptions, logger *zap.Logger) *FilterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Policy == "" {
		opts.Policy = StatusAlwaysOK
	}
	return &FilterHandler{
		query:      query,
		resolver:   resolver,
		policy:     opts.Policy,
		legacyKeys: opts.LegacyFacetKeys,
		logger:     logger,
	}
}

// ServeHTTP handles GET requests from the storefront proxy.
func (h *FilterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := domain.ParseFilterParams(r.URL.Query())
	var shopDomain string

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("filter pipeline panicked",
				zap.Any("panic", rec),
				zap.String("request_id", RequestIDFromContext(r.Context())),
			)
			h.writeError(w, fmt.Errorf("unexpected error: %v", rec), shopDomain, params.CollectionHandle)
		}
	}()

	if err := params.Validate(); err != nil {
		h.writeError(w, err, "", "")
		return
	}

	resolved, source, err := h.resolver.Resolve(r)
	if err != nil {
		h.writeError(w, err, "", params.CollectionHandle)
		return
	}
	shopDomain = resolved

	res, err := h.query.Execute(r.Context(), &filter_products.Request{
		ShopDomain: shopDomain,
		Params:     params,
	})
	if err != nil {
		h.logger.Warn("filter products failed",
			zap.Error(err),
			zap.String("shop", shopDomain),
			zap.String("shop_source", string(source)),
			zap.String("collection", params.CollectionHandle),
			zap.String("request_id", RequestIDFromContext(r.Context())),
		)
		h.writeError(w, err, shopDomain, params.CollectionHandle)
		return
	}

	writeJSON(w, http.StatusOK, contracts.NewSuccessResponse(
		res.ShopDomain,
		res.CollectionHandle,
		res.Facets,
		res.FilteredHandles,
		h.legacyKeys,
	))
}

func (h *FilterHandler) writeError(w http.ResponseWriter, err error, shopDomain, collectionHandle string) {
	status := h.policy.StatusFor(contracts.ClassifyError(err))
	writeJSON(w, status, contracts.NewErrorResponse(err.Error(), shopDomain, collectionHandle))
}

// writeJSON writes an uncacheable JSON body.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
