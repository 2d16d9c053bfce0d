// Package storefront fetches catalog products from the Shopify Storefront
// GraphQL API.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

// DefaultAPIVersion is the Storefront API version used when none is configured.
const DefaultAPIVersion = "2025-01"

// maxErrorBody bounds how much of a failed response is echoed into errors.
const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	// BaseURL replaces "https://<shop>" when set (used for local stubs).
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements contracts.CatalogFetcher against the Storefront API.
type Client struct {
	token      string
	apiVersion string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Storefront catalog client.
func NewClient(opts Options, logger *zap.Logger) *Client {
	version := opts.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:      opts.AccessToken,
		apiVersion: version,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

var _ contracts.CatalogFetcher = (*Client)(nil)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

type productConnection struct {
	Nodes []*domain.ProductRecord `json:"nodes"`
}

type gqlResponse struct {
	Data struct {
		Products   *productConnection `json:"products"`
		Collection *struct {
			Products *productConnection `json:"products"`
		} `json:"collection"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

// FetchProducts issues exactly one GraphQL query. "all" queries the whole
// catalog; any other handle is scoped to that collection.
func (c *Client) FetchProducts(ctx context.Context, req *contracts.FetchRequest) ([]*domain.ProductRecord, error) {
	if c.token == "" {
		return nil, domain.ErrMissingStorefrontToken
	}
	if req.ShopDomain == "" {
		return nil, domain.ErrMissingShopDomain
	}

	first := req.First
	if first <= 0 {
		first = contracts.DefaultPageSize
	}

	variables := map[string]any{
		"first": first,
		"query": req.Query,
	}
	body := gqlRequest{Variables: variables}
	allProducts := req.CollectionHandle == domain.AllProductsHandle
	if allProducts {
		body.Query = allProductsQuery
	} else {
		body.Query = productsInCollectionQuery
		variables["collectionHandle"] = req.CollectionHandle
	}

	resp, err := c.do(ctx, req.ShopDomain, body)
	if err != nil {
		return nil, err
	}

	var conn *productConnection
	if allProducts {
		conn = resp.Data.Products
	} else if resp.Data.Collection != nil {
		conn = resp.Data.Collection.Products
	}
	if conn == nil {
		c.logger.Debug("catalog returned no product connection",
			zap.String("shop", req.ShopDomain),
			zap.String("collection", req.CollectionHandle))
		return []*domain.ProductRecord{}, nil
	}

	return conn.Nodes, nil
}

func (c *Client) endpoint(shop string) string {
	base := c.baseURL
	if base == "" {
		base = "https://" + shop
	}
	return fmt.Sprintf("%s/api/%s/graphql.json", base, c.apiVersion)
}

func (c *Client) do(ctx context.Context, shop string, body gqlRequest) (*gqlResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(shop), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", domain.ErrCatalogUnavailable, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrCatalogUnavailable, err)
	}

	c.logger.Debug("storefront query completed",
		zap.String("shop", shop),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrCatalogUnavailable, httpResp.StatusCode, truncate(raw))
	}

	var out gqlResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", domain.ErrCatalogUnavailable, err)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrCatalogQuery, strings.Join(msgs, "; "))
	}

	return &out, nil
}

func truncate(raw []byte) string {
	if len(raw) > maxErrorBody {
		return string(raw[:maxErrorBody]) + "..."
	}
	return string(raw)
}
