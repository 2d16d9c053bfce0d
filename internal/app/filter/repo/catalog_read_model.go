package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	"github.com/light-bringer/storefront-filters/internal/app/filter/domain"
	"github.com/light-bringer/storefront-filters/internal/models/m_catalog_product"
	"github.com/light-bringer/storefront-filters/internal/models/m_collection_product"
	"github.com/light-bringer/storefront-filters/internal/pkg/query"
)

const (
	productAlias    = "p"
	membershipAlias = "c"
)

// CatalogReadModel implements contracts.CatalogFetcher over a Spanner mirror
// of the storefront catalog. Vendor, type, tag and price are filtered in SQL;
// color and size are still left to local option matching.
type CatalogReadModel struct {
	client *spanner.Client
}

// NewCatalogReadModel creates a new Spanner-backed catalog fetcher.
func NewCatalogReadModel(client *spanner.Client) *CatalogReadModel {
	return &CatalogReadModel{client: client}
}

var _ contracts.CatalogFetcher = (*CatalogReadModel)(nil)

// FetchProducts runs one query against the mirror.
func (rm *CatalogReadModel) FetchProducts(ctx context.Context, req *contracts.FetchRequest) ([]*domain.ProductRecord, error) {
	stmt := BuildCatalogStatement(req)

	iter := rm.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	records := make([]*domain.ProductRecord, 0)
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to iterate catalog products: %v", domain.ErrCatalogUnavailable, err)
		}

		var data m_catalog_product.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse catalog product: %w", err)
		}

		record, err := dataToRecord(&data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert catalog product %q: %w", data.Handle, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// BuildCatalogStatement translates a fetch request into SQL. Collection
// scoped reads join collection_products and keep the collection's order;
// "all" reads the product table alone, ordered by handle.
func BuildCatalogStatement(req *contracts.FetchRequest) spanner.Statement {
	first := req.First
	if first <= 0 {
		first = contracts.DefaultPageSize
	}

	cols := m_catalog_product.Columns()
	selectCols := make([]string, len(cols))
	for i, c := range cols {
		selectCols[i] = productAlias + "." + c
	}

	b := query.From(m_catalog_product.TableName + " " + productAlias).
		Select(selectCols...).
		Where(query.Eq(col(m_catalog_product.ShopDomain), req.ShopDomain))

	if req.CollectionHandle == domain.AllProductsHandle {
		b = b.OrderBy(col(m_catalog_product.Handle), query.Asc)
	} else {
		b = b.Join(fmt.Sprintf("JOIN %s %s ON %s.%s = %s AND %s.%s = %s",
			m_collection_product.TableName, membershipAlias,
			membershipAlias, m_collection_product.ShopDomain, col(m_catalog_product.ShopDomain),
			membershipAlias, m_collection_product.ProductHandle, col(m_catalog_product.Handle),
		)).
			Where(query.Eq(membershipAlias+"."+m_collection_product.CollectionHandle, req.CollectionHandle)).
			OrderBy(membershipAlias+"."+m_collection_product.Position, query.Asc).
			OrderBy(col(m_catalog_product.Handle), query.Asc)
	}

	if p := req.Params; p != nil {
		if v := strings.TrimSpace(p.Vendor); v != "" {
			b = b.Where(query.EqFold(col(m_catalog_product.Vendor), v))
		}
		if v := strings.TrimSpace(p.Type); v != "" {
			b = b.Where(query.EqFold(col(m_catalog_product.ProductType), v))
		}
		if v := strings.TrimSpace(p.Tag); v != "" {
			b = b.Where(query.ArrayContains(col(m_catalog_product.Tags), v))
		}
		// A product matches a price bound when any variant price satisfies it.
		if p.MinPrice != nil {
			b = b.Where(query.Gte(col(m_catalog_product.MaxPrice), *p.MinPrice))
		}
		if p.MaxPrice != nil {
			b = b.Where(query.Lte(col(m_catalog_product.MinPrice), *p.MaxPrice))
		}
	}

	return b.Limit(int64(first)).Build()
}

func col(name string) string {
	return productAlias + "." + name
}

// dataToRecord converts database Data to a ProductRecord.
func dataToRecord(data *m_catalog_product.Data) (*domain.ProductRecord, error) {
	record := &domain.ProductRecord{
		Handle:      data.Handle,
		Vendor:      data.Vendor.StringVal,
		ProductType: data.ProductType.StringVal,
		Tags:        make([]string, 0, len(data.Tags)),
		Options:     []domain.Option{},
	}

	for _, t := range data.Tags {
		if t.Valid {
			record.Tags = append(record.Tags, t.StringVal)
		}
	}

	if data.OptionsJSON.Valid && data.OptionsJSON.StringVal != "" {
		if err := json.Unmarshal([]byte(data.OptionsJSON.StringVal), &record.Options); err != nil {
			return nil, fmt.Errorf("invalid options: %w", err)
		}
	}

	return record, nil
}
