package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanisarees/storefront/internal/catalog"
	"github.com/vanisarees/storefront/internal/domain"
	"github.com/vanisarees/storefront/pkg/database"
)

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

var productColumns = []string{
	"id", "name", "slug", "price", "sale_price", "images", "category_id",
	"stock_quantity", "featured", "video_url", "total_count",
}

func silkRow(total int) []any {
	return []any{
		"p1", "Silk Saree", "silk-saree", int64(2500), int64Ptr(2000), []string{"a.jpg"}, strPtr("cat-1"),
		3, true, strPtr("https://cdn.example.com/p1.mp4"), total,
	}
}

func cottonRow(total int) []any {
	return []any{
		"p2", "Cotton Saree", "cotton-saree", int64(1200), (*int64)(nil), []string{}, (*string)(nil),
		0, false, (*string)(nil), total,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ListProducts
// ─────────────────────────────────────────────────────────────────────────────

func TestCatalogSource_ListProducts_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	src := NewCatalogSource(mock)

	mock.ExpectQuery(`SELECT .+ FROM products p .+ WHERE p.status = 'published' AND c.slug = \$1 ORDER BY p.created_at DESC, p.id LIMIT \$2 OFFSET \$3`).
		WithArgs("sarees", 12, 12).
		WillReturnRows(
			pgxmock.NewRows(productColumns).AddRow(silkRow(14)...).AddRow(cottonRow(14)...),
		)

	page, err := src.ListProducts(context.Background(), catalog.Query{
		CategorySlug: "sarees",
		SortKey:      domain.SortCreatedAt,
		Page:         2,
		PageSize:     12,
	})
	require.NoError(t, err)
	assert.Equal(t, 14, page.TotalCount)
	require.Len(t, page.Rows, 2)

	silk := page.Rows[0]
	assert.Equal(t, "p1", silk.ID)
	assert.Equal(t, int64(2000), silk.EffectivePrice())
	assert.Equal(t, "cat-1", silk.CategoryID)
	assert.True(t, silk.HasPreview())
	assert.Equal(t, "a.jpg", silk.PrimaryImage())

	cotton := page.Rows[1]
	assert.Nil(t, cotton.SalePrice)
	assert.Empty(t, cotton.CategoryID)
	assert.False(t, cotton.InStock())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogSource_ListProducts_SortMapping(t *testing.T) {
	tests := []struct {
		key   domain.SortKey
		order string
	}{
		{domain.SortName, `ORDER BY p.name ASC, p.id`},
		{domain.SortPriceLow, `ORDER BY COALESCE\(p.sale_price, p.price\) ASC, p.id`},
		{domain.SortPriceHigh, `ORDER BY COALESCE\(p.sale_price, p.price\) DESC, p.id`},
		{domain.SortCreatedAt, `ORDER BY p.created_at DESC, p.id`},
		{"unknown", `ORDER BY p.created_at DESC, p.id`},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			mock := newMock(t)
			defer mock.Close()
			src := NewCatalogSource(mock)

			mock.ExpectQuery(tt.order).
				WithArgs(12, 0).
				WillReturnRows(pgxmock.NewRows(productColumns))

			page, err := src.ListProducts(context.Background(), catalog.Query{SortKey: tt.key, Page: 1, PageSize: 12})
			require.NoError(t, err)
			assert.NotNil(t, page.Rows)
			assert.Empty(t, page.Rows)
			assert.Equal(t, 0, page.TotalCount)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCatalogSource_ListProducts_NormalizesPaging(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	src := NewCatalogSource(mock)

	// page 0 -> 1, page size 0 -> default 20
	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(productColumns))

	_, err := src.ListProducts(context.Background(), catalog.Query{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogSource_ListProducts_QueryError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	src := NewCatalogSource(mock)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs(12, 0).
		WillReturnError(errors.New("connection refused"))

	_, err := src.ListProducts(context.Background(), catalog.Query{Page: 1, PageSize: 12})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query products")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogSource_ListProducts_RowError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	src := NewCatalogSource(mock)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs(12, 0).
		WillReturnRows(
			pgxmock.NewRows(productColumns).
				AddRow(silkRow(2)...).
				AddRow(cottonRow(2)...).
				RowError(1, errors.New("network reset")),
		)

	_, err := src.ListProducts(context.Background(), catalog.Query{Page: 1, PageSize: 12})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
