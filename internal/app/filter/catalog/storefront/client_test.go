package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

type recordedCall struct {
	Path      string
	Token     string
	Query     string
	Variables map[string]any
}

type fakeStorefront struct {
	mu       sync.Mutex
	calls    []recordedCall
	status   int
	response string
}

func (f *fakeStorefront) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body gqlRequest
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Path:      r.URL.Path,
		Token:     r.Header.Get("X-Shopify-Storefront-Access-Token"),
		Query:     body.Query,
		Variables: body.Variables,
	})
	f.mu.Unlock()

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(f.response))
}

func newTestClient(t *testing.T, fake *fakeStorefront, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewClient(Options{AccessToken: token, BaseURL: srv.URL}, nil)
}

func TestClient_AllProductsQueriesWholeCatalog(t *testing.T) {
	fake := &fakeStorefront{response: `{"data":{"products":{"nodes":[
		{"handle":"tee","vendor":"Acme","productType":"Shirt","tags":["a"],"options":[{"name":"Color","values":["Red"]}]}
	]}}}`}
	client := newTestClient(t, fake, "tok")

	q := "vendor:Acme"
	records, err := client.FetchProducts(context.Background(), &contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: "all",
		Query:            &q,
	})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tee", records[0].Handle)
	assert.Equal(t, []domain.Option{{Name: "Color", Values: []string{"Red"}}}, records[0].Options)

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.Equal(t, "/api/2025-01/graphql.json", call.Path)
	assert.Equal(t, "tok", call.Token)
	assert.Contains(t, call.Query, "query AllProducts")
	assert.NotContains(t, call.Query, "collection(")
	assert.NotContains(t, call.Variables, "collectionHandle")
	assert.Equal(t, float64(250), call.Variables["first"])
	assert.Equal(t, "vendor:Acme", call.Variables["query"])
}

func TestClient_CollectionScopedQuery(t *testing.T) {
	fake := &fakeStorefront{response: `{"data":{"collection":{"products":{"nodes":[{"handle":"a"},{"handle":"b"}]}}}}`}
	client := newTestClient(t, fake, "tok")

	records, err := client.FetchProducts(context.Background(), &contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: "shirts",
	})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Handle)
	assert.Equal(t, "b", records[1].Handle)

	call := fake.calls[0]
	assert.Contains(t, call.Query, "query ProductsInCollection")
	assert.Equal(t, "shirts", call.Variables["collectionHandle"])
	assert.Nil(t, call.Variables["query"])
	assert.Contains(t, call.Variables, "query")
}

func TestClient_MissingCollectionYieldsNoRecords(t *testing.T) {
	fake := &fakeStorefront{response: `{"data":{"collection":null}}`}
	client := newTestClient(t, fake, "tok")

	records, err := client.FetchProducts(context.Background(), &contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: "nope",
	})

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestClient_GraphQLErrors(t *testing.T) {
	fake := &fakeStorefront{response: `{"errors":[{"message":"Throttled"},{"message":"Bad query"}]}`}
	client := newTestClient(t, fake, "tok")

	_, err := client.FetchProducts(context.Background(), &contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: "all",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogQuery)
	assert.Contains(t, err.Error(), "Throttled; Bad query")
}

func TestClient_HTTPFailureIsNotRetried(t *testing.T) {
	fake := &fakeStorefront{status: http.StatusBadGateway, response: `<html>bad gateway</html>`}
	client := newTestClient(t, fake, "tok")

	_, err := client.FetchProducts(context.Background(), &contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: "shirts",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.Len(t, fake.calls, 1)
}

func TestClient_MalformedBody(t *testing.T) {
	fake := &fakeStorefront{response: `not json`}
	client := newTestClient(t, fake, "tok")

	_, err := client.FetchProducts(context.Background(), &contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: "shirts",
	})

	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestClient_MissingToken(t *testing.T) {
	fake := &fakeStorefront{}
	client := newTestClient(t, fake, "")

	_, err := client.FetchProducts(context.Background(), &contracts.FetchRequest{
		ShopDomain:       "demo.myshopify.com",
		CollectionHandle: "all",
	})

	assert.ErrorIs(t, err, domain.ErrMissingStorefrontToken)
	assert.Empty(t, fake.calls)
}

func TestClient_EndpointUsesShopDomain(t *testing.T) {
	client := NewClient(Options{AccessToken: "tok", APIVersion: "2024-10"}, nil)

	assert.Equal(t, "https://demo.myshopify.com/api/2024-10/graphql.json", client.endpoint("demo.myshopify.com"))
}
