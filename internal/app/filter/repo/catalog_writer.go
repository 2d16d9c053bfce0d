package repo

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
	"github.com/light-bringer/storefront-filters/internal/models/m_catalog_product"
	"github.com/light-bringer/storefront-filters/internal/models/m_collection_product"
	"github.com/light-bringer/storefront-filters/internal/pkg/committer"
)

// MirrorProduct is one product as stored in the catalog mirror.
type MirrorProduct struct {
	domain.ProductRecord
	MinPrice *float64
	MaxPrice *float64
}

// CatalogWriter builds mutations that replace a shop's mirrored catalog.
type CatalogWriter struct {
	products    *m_catalog_product.Model
	collections *m_collection_product.Model
}

// NewCatalogWriter creates a new CatalogWriter.
func NewCatalogWriter() *CatalogWriter {
	return &CatalogWriter{
		products:    m_catalog_product.NewModel(),
		collections: m_collection_product.NewModel(),
	}
}

// ReplaceShopPlan returns a plan that deletes everything mirrored for shop
// and writes products and collection memberships. Collection order follows
// the handle order given.
func (w *CatalogWriter) ReplaceShopPlan(shop string, products []MirrorProduct, collections map[string][]string) (*committer.CommitPlan, error) {
	if shop == "" {
		return nil, domain.ErrMissingShopDomain
	}

	known := make(map[string]struct{}, len(products))
	plan := committer.NewPlan()
	plan.Add(w.collections.DeleteShopMut(shop))
	plan.Add(w.products.DeleteShopMut(shop))

	for i := range products {
		p := &products[i]
		if p.Handle == "" {
			return nil, fmt.Errorf("product %d has no handle", i)
		}
		data, err := recordToData(shop, p)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", p.Handle, err)
		}
		plan.Add(w.products.InsertMut(data))
		known[p.Handle] = struct{}{}
	}

	for collection, handles := range collections {
		for pos, handle := range handles {
			if _, ok := known[handle]; !ok {
				return nil, fmt.Errorf("collection %s references unknown product %s", collection, handle)
			}
			plan.Add(w.collections.InsertMut(&m_collection_product.Data{
				ShopDomain:       shop,
				CollectionHandle: collection,
				ProductHandle:    handle,
				Position:         int64(pos),
			}))
		}
	}

	return plan, nil
}

// recordToData converts a MirrorProduct to database Data.
func recordToData(shop string, p *MirrorProduct) (*m_catalog_product.Data, error) {
	options := p.Options
	if options == nil {
		options = []domain.Option{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}

	tags := make([]spanner.NullString, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, spanner.NullString{StringVal: t, Valid: true})
	}

	return &m_catalog_product.Data{
		ShopDomain:  shop,
		Handle:      p.Handle,
		Vendor:      nullString(p.Vendor),
		ProductType: nullString(p.ProductType),
		Tags:        tags,
		OptionsJSON: spanner.NullString{StringVal: string(raw), Valid: true},
		MinPrice:    nullFloat(p.MinPrice),
		MaxPrice:    nullFloat(p.MaxPrice),
	}, nil
}

func nullString(s string) spanner.NullString {
	return spanner.NullString{StringVal: s, Valid: s != ""}
}

func nullFloat(f *float64) spanner.NullFloat64 {
	if f == nil {
		return spanner.NullFloat64{}
	}
	return spanner.NullFloat64{Float64: *f, Valid: true}
}
