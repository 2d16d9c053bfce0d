package testutil

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
	"github.com/light-bringer/storefront-filters/internal/app/filter/repo"
	"github.com/light-bringer/storefront-filters/internal/pkg/committer"
)

// TestShop is the shop domain used by catalog fixtures.
const TestShop = "fixture.myshopify.com"

// Price returns a pointer for MirrorProduct price fields.
func Price(v float64) *float64 {
	return &v
}

// Product builds a mirror product with a single price.
func Product(handle, vendor, productType string, price float64, tags []string, options ...domain.Option) repo.MirrorProduct {
	return repo.MirrorProduct{
		ProductRecord: domain.ProductRecord{
			Handle:      handle,
			Vendor:      vendor,
			ProductType: productType,
			Tags:        tags,
			Options:     options,
		},
		MinPrice: Price(price),
		MaxPrice: Price(price),
	}
}

// ShirtCatalog is a small catalog with one "shirts" collection.
func ShirtCatalog() ([]repo.MirrorProduct, map[string][]string) {
	products := []repo.MirrorProduct{
		Product("red-tee", "Acme", "Shirt", 20, []string{"summer"},
			domain.Option{Name: "Color", Values: []string{"Red"}},
			domain.Option{Name: "Size", Values: []string{"S", "M"}}),
		Product("blue-tee", "Globex", "Shirt", 35, []string{"winter"},
			domain.Option{Name: "Colour", Values: []string{"Blue"}},
			domain.Option{Name: "Size", Values: []string{"L"}}),
		Product("green-mug", "Acme", "Mug", 8, nil),
	}
	collections := map[string][]string{
		"shirts": {"blue-tee", "red-tee"},
	}
	return products, collections
}

// SeedCatalog replaces the mirrored catalog of shop.
func SeedCatalog(t *testing.T, client *spanner.Client, shop string, products []repo.MirrorProduct, collections map[string][]string) {
	t.Helper()

	plan, err := repo.NewCatalogWriter().ReplaceShopPlan(shop, products, collections)
	require.NoError(t, err, "failed to build catalog plan")

	err = committer.NewCommitter(client).Apply(context.Background(), plan)
	require.NoError(t, err, "failed to seed catalog")
}
