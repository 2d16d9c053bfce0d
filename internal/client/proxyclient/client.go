// Package proxyclient fetches filter results from the storefront app proxy
// the way the storefront script does: same-origin GET, JSON only, cookies kept.
package proxyclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// DefaultPath is the app proxy path the storefront calls.
const DefaultPath = "/apps/facet-filters/products"

// Options configures a Client.
type Options struct {
	// BaseURL is the storefront origin, e.g. https://demo.myshopify.com.
	BaseURL string
	// Path defaults to DefaultPath.
	Path       string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the filter endpoint through the app proxy.
type Client struct {
	endpoint *url.URL
	http     *http.Client
	logger   *zap.Logger
}

// New creates a Client. Without an explicit HTTPClient a cookie jar is
// attached so session cookies flow as they would for a same-origin fetch.
func New(opts Options, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseURL)
	}
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}

	hc := opts.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 20 * time.Second
		}
		hc = &http.Client{Jar: jar, Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint: base.ResolveReference(&url.URL{Path: path}),
		http:     hc,
		logger:   logger,
	}, nil
}

// Fetch sends query to the filter endpoint and decodes the envelope.
// The body decides success: ok:false is a ResponseError whatever the status,
// and a body without ok falls back to the HTTP status.
func (c *Client) Fetch(ctx context.Context, query url.Values) (*Response, error) {
	u := *c.endpoint
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	for _, noise := range []string{"section_id", "sections", "path"} {
		q.Del(noise)
	}
	u.RawQuery = q.Encode()
	target := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: target, Reason: "request failed", Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{URL: target, Status: res.StatusCode, Reason: "read body", Err: err}
	}

	contentType := res.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return nil, &TransportError{
			URL:    target,
			Status: res.StatusCode,
			Reason: fmt.Sprintf("non-JSON response (content-type: %s)", contentType),
		}
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &TransportError{URL: target, Status: res.StatusCode, Reason: "invalid JSON", Err: err}
	}

	c.logger.Debug("proxy response", zap.String("url", target), zap.Int("status", res.StatusCode))

	resp := decodeResponse(body, res.StatusCode)
	if !resp.OK {
		return nil, &ResponseError{Status: res.StatusCode, Message: resp.Message}
	}
	return resp, nil
}

// IsTransportError reports whether err came from a malformed proxy reply.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
