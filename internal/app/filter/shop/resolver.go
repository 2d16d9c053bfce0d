// Package shop resolves which storefront a filter request belongs to.
package shop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
)

// Source names one place a shop domain may come from.
type Source string

const (
	// SourceSession reads a domain placed on the request context by an
	// upstream session layer.
	SourceSession Source = "session"
	// SourceHeader reads the forwarded proxy header.
	SourceHeader Source = "header"
	// SourceQuery reads the "shop" query parameter.
	SourceQuery Source = "query"
	// SourceFallback uses the configured fallback domain.
	SourceFallback Source = "fallback"
)

// HeaderShopDomain is forwarded by the storefront application proxy.
const HeaderShopDomain = "X-Shopify-Shop-Domain"

// DefaultOrder is the resolution order used when none is configured.
var DefaultOrder = []Source{SourceSession, SourceHeader, SourceQuery, SourceFallback}

// ParseOrder converts configuration strings into Sources.
func ParseOrder(names []string) ([]Source, error) {
	if len(names) == 0 {
		return DefaultOrder, nil
	}
	order := make([]Source, 0, len(names))
	for _, n := range names {
		s := Source(strings.ToLower(strings.TrimSpace(n)))
		switch s {
		case SourceSession, SourceHeader, SourceQuery, SourceFallback:
			order = append(order, s)
		default:
			return nil, fmt.Errorf("unknown shop domain source %q", n)
		}
	}
	return order, nil
}

type sessionKey struct{}

// WithSessionShop returns a context carrying an authenticated shop domain.
func WithSessionShop(ctx context.Context, shopDomain string) context.Context {
	return context.WithValue(ctx, sessionKey{}, shopDomain)
}

// SessionShop returns the domain stored by WithSessionShop.
func SessionShop(ctx context.Context) (string, bool) {
	d, ok := ctx.Value(sessionKey{}).(string)
	return d, ok
}

// Resolver picks the first non-empty shop domain in the configured order.
type Resolver struct {
	order    []Source
	fallback string
}

// NewResolver creates a Resolver. A nil order selects DefaultOrder.
func NewResolver(order []Source, fallback string) *Resolver {
	if len(order) == 0 {
		order = DefaultOrder
	}
	return &Resolver{order: order, fallback: fallback}
}

// Candidates holds the raw value each transport found per Source.
// SourceFallback is ignored; the Resolver supplies its own fallback.
type Candidates map[Source]string

// Resolve returns the normalized shop domain and the source that supplied it.
func (r *Resolver) Resolve(req *http.Request) (string, Source, error) {
	session, _ := SessionShop(req.Context())
	return r.ResolveCandidates(Candidates{
		SourceSession: session,
		SourceHeader:  req.Header.Get(HeaderShopDomain),
		SourceQuery:   req.URL.Query().Get(domain.ParamShop),
	})
}

// ResolveCandidates walks the configured order over values gathered by a
// transport and returns the first that normalizes to a domain.
func (r *Resolver) ResolveCandidates(c Candidates) (string, Source, error) {
	for _, src := range r.order {
		candidate := c[src]
		if src == SourceFallback {
			candidate = r.fallback
		}
		if d := Normalize(candidate); d != "" {
			return d, src, nil
		}
	}
	return "", "", domain.ErrMissingShopDomain
}

// Normalize strips scheme, trailing path and surrounding slashes so that
// "https://demo.myshopify.com/admin" and "demo.myshopify.com/" both become
// "demo.myshopify.com".
func Normalize(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			return u.Host
		}
	}
	s = strings.Trim(s, "/")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}
