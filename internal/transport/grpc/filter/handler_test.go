package filter

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain/services"
	"github.com/light-bringer/storefront-filters/internal/app/filter/queries/filter_products"
	"github.com/light-bringer/storefront-filters/internal/app/filter/shop"
)

type fetcherFunc func(ctx context.Context, req *contracts.FetchRequest) ([]*domain.ProductRecord, error)

func (f fetcherFunc) FetchProducts(ctx context.Context, req *contracts.FetchRequest) ([]*domain.ProductRecord, error) {
	return f(ctx, req)
}

func sizes() []*domain.ProductRecord {
	return []*domain.ProductRecord{
		{Handle: "tee", Vendor: "Acme", Options: []domain.Option{{Name: "Size", Values: []string{"S", "M"}}}},
		{Handle: "hoodie", Vendor: "Acme", Options: []domain.Option{{Name: "size", Values: []string{"L"}}}},
	}
}

// startServer serves h over an in-memory listener and returns a client.
func startServer(t *testing.T, h FilterServiceServer) *FilterServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterFilterServiceServer(srv, h)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewFilterServiceClient(conn)
}

func newHandler(f contracts.CatalogFetcher, opts HandlerOptions) *Handler {
	q := filter_products.NewQuery(f, services.NewFacetAggregator(services.FacetScopeCatalog), zap.NewNop())
	return NewHandler(q, opts, zap.NewNop())
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestFilterProducts_Success(t *testing.T) {
	var got *contracts.FetchRequest
	client := startServer(t, newHandler(fetcherFunc(func(_ context.Context, req *contracts.FetchRequest) ([]*domain.ProductRecord, error) {
		got = req
		return sizes(), nil
	}), HandlerOptions{FallbackShop: "demo.myshopify.com"}))

	reply, err := client.FilterProducts(context.Background(), mustStruct(t, map[string]any{
		"collectionHandle": "all",
		"size":             "l",
		"maxPrice":         25.5,
	}))
	require.NoError(t, err)

	body := reply.AsMap()
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, []any{"hoodie"}, body["filteredHandles"])
	assert.Equal(t, "demo.myshopify.com", body["shop"])
	assert.Equal(t, []any{"L", "M", "S"}, body["facets"].(map[string]any)["sizes"])

	require.NotNil(t, got.Query)
	assert.Equal(t, "price:<=25.5", *got.Query)
}

func TestFilterProducts_MetadataShop(t *testing.T) {
	var gotShop string
	client := startServer(t, newHandler(fetcherFunc(func(_ context.Context, req *contracts.FetchRequest) ([]*domain.ProductRecord, error) {
		gotShop = req.ShopDomain
		return nil, nil
	}), HandlerOptions{FallbackShop: "fallback.myshopify.com"}))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-shopify-shop-domain", "https://meta.myshopify.com/")
	_, err := client.FilterProducts(ctx, mustStruct(t, map[string]any{"collectionHandle": "all"}))

	require.NoError(t, err)
	assert.Equal(t, "meta.myshopify.com", gotShop)
}

func TestFilterProducts_ConfiguredShopOrder(t *testing.T) {
	var gotShop string
	fetcher := fetcherFunc(func(_ context.Context, req *contracts.FetchRequest) ([]*domain.ProductRecord, error) {
		gotShop = req.ShopDomain
		return nil, nil
	})
	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-shopify-shop-domain", "meta.myshopify.com")
	req := map[string]any{"collectionHandle": "all", "shop": "field.myshopify.com"}

	t.Run("fallback first", func(t *testing.T) {
		resolver := shop.NewResolver([]shop.Source{shop.SourceFallback, shop.SourceHeader}, "fallback.myshopify.com")
		client := startServer(t, newHandler(fetcher, HandlerOptions{Resolver: resolver}))

		_, err := client.FilterProducts(ctx, mustStruct(t, req))
		require.NoError(t, err)
		assert.Equal(t, "fallback.myshopify.com", gotShop)
	})

	t.Run("query before header", func(t *testing.T) {
		resolver := shop.NewResolver([]shop.Source{shop.SourceQuery, shop.SourceHeader}, "")
		client := startServer(t, newHandler(fetcher, HandlerOptions{Resolver: resolver}))

		_, err := client.FilterProducts(ctx, mustStruct(t, req))
		require.NoError(t, err)
		assert.Equal(t, "field.myshopify.com", gotShop)
	})

	t.Run("sources outside the order are ignored", func(t *testing.T) {
		resolver := shop.NewResolver([]shop.Source{shop.SourceHeader}, "fallback.myshopify.com")
		client := startServer(t, newHandler(fetcher, HandlerOptions{Resolver: resolver}))

		resp, err := client.FilterProducts(context.Background(), mustStruct(t, req))
		require.NoError(t, err)
		assert.False(t, resp.Fields["ok"].GetBoolValue())
	})
}

func TestFilterProducts_FailureEnvelope(t *testing.T) {
	client := startServer(t, newHandler(fetcherFunc(func(context.Context, *contracts.FetchRequest) ([]*domain.ProductRecord, error) {
		return nil, fmt.Errorf("boom: %w", domain.ErrCatalogUnavailable)
	}), HandlerOptions{FallbackShop: "demo.myshopify.com"}))

	reply, err := client.FilterProducts(context.Background(), mustStruct(t, map[string]any{"collectionHandle": "shirts"}))
	require.NoError(t, err)

	body := reply.AsMap()
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["message"], "catalog unavailable")
	assert.Equal(t, "shirts", body["collectionHandle"])
}

func TestFilterProducts_MappedErrors(t *testing.T) {
	tests := []struct {
		name    string
		fetcher fetcherFunc
		req     map[string]any
		want    codes.Code
	}{
		{
			name:    "missing handle",
			fetcher: func(context.Context, *contracts.FetchRequest) ([]*domain.ProductRecord, error) { return nil, nil },
			req:     map[string]any{},
			want:    codes.InvalidArgument,
		},
		{
			name: "catalog down",
			fetcher: func(context.Context, *contracts.FetchRequest) ([]*domain.ProductRecord, error) {
				return nil, domain.ErrCatalogUnavailable
			},
			req:  map[string]any{"collectionHandle": "all"},
			want: codes.Unavailable,
		},
		{
			name: "panic",
			fetcher: func(context.Context, *contracts.FetchRequest) ([]*domain.ProductRecord, error) {
				panic("unreachable state")
			},
			req:  map[string]any{"collectionHandle": "all"},
			want: codes.Internal,
		},
		{
			name:    "nested value",
			fetcher: func(context.Context, *contracts.FetchRequest) ([]*domain.ProductRecord, error) { return nil, nil },
			req:     map[string]any{"collectionHandle": map[string]any{"x": "y"}},
			want:    codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startServer(t, newHandler(tt.fetcher, HandlerOptions{FallbackShop: "demo.myshopify.com", MappedErrors: true}))

			_, err := client.FilterProducts(context.Background(), mustStruct(t, tt.req))

			require.Error(t, err)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestStructToValues(t *testing.T) {
	values, err := structToValues(mustStruct(t, map[string]any{
		"collectionHandle": "all",
		"minPrice":         10.0,
		"vendor":           nil,
	}))

	require.NoError(t, err)
	assert.Equal(t, "all", values.Get("collectionHandle"))
	assert.Equal(t, "10", values.Get("minPrice"))
	assert.False(t, values.Has("vendor"))
}
