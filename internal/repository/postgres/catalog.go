// Package postgres reads catalog pages straight from the product database.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/vanisarees/storefront/internal/catalog"
	"github.com/vanisarees/storefront/internal/domain"
	"github.com/vanisarees/storefront/pkg/database"
	"github.com/vanisarees/storefront/pkg/pagination"
)

// orderBy maps a sort key to its ORDER BY clause. p.id breaks ties so pages
// do not overlap.
var orderBy = map[domain.SortKey]string{
	domain.SortName:      "p.name ASC, p.id",
	domain.SortPriceLow:  "COALESCE(p.sale_price, p.price) ASC, p.id",
	domain.SortPriceHigh: "COALESCE(p.sale_price, p.price) DESC, p.id",
	domain.SortCreatedAt: "p.created_at DESC, p.id",
}

// CatalogSource implements catalog.Source on PostgreSQL.
type CatalogSource struct {
	db database.DBTX
}

// NewCatalogSource creates a catalog source on db.
func NewCatalogSource(db database.DBTX) *CatalogSource {
	return &CatalogSource{db: db}
}

// ListProducts returns one page of published products and the total count of
// the matching rows.
func (s *CatalogSource) ListProducts(ctx context.Context, q catalog.Query) (_ catalog.Page, err error) {
	var (
		conditions = []string{"p.status = 'published'"}
		args       []any
		argIndex   = 1
	)

	if q.CategorySlug != "" {
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", argIndex))
		args = append(args, q.CategorySlug)
		argIndex++
	}

	order, ok := orderBy[q.SortKey]
	if !ok {
		order = orderBy[domain.SortCreatedAt]
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.name, p.slug, p.price, p.sale_price, p.images, p.category_id,
			   p.stock_quantity, p.featured, p.video_url,
			   count(*) OVER() AS total_count
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), order, argIndex, argIndex+1,
	)

	params := pagination.NewParams(q.Page, q.PageSize)
	args = append(args, params.PerPage, params.Offset())

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return catalog.Page{}, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	page := catalog.Page{Rows: []domain.ProductRow{}}
	for rows.Next() {
		var (
			p          domain.ProductRow
			categoryID *string
		)
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Price,
			&p.SalePrice,
			&p.Images,
			&categoryID,
			&p.StockQuantity,
			&p.Featured,
			&p.VideoURL,
			&page.TotalCount,
		); err != nil {
			return catalog.Page{}, fmt.Errorf("scan product row: %w", err)
		}
		if categoryID != nil {
			p.CategoryID = *categoryID
		}
		page.Rows = append(page.Rows, p)
	}
	if err := rows.Err(); err != nil {
		return catalog.Page{}, fmt.Errorf("iterate product rows: %w", err)
	}

	return page, nil
}
