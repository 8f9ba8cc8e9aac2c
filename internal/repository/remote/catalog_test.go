package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanisarees/storefront/internal/catalog"
	"github.com/vanisarees/storefront/internal/domain"
	apperrors "github.com/vanisarees/storefront/pkg/errors"
	"github.com/vanisarees/storefront/pkg/httpclient"
	"github.com/vanisarees/storefront/pkg/logger"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *CatalogSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := httpclient.New(httpclient.Config{
		Timeout:      2 * time.Second,
		MaxRetries:   0,
		RetryWaitMin: time.Millisecond,
	})
	bc := httpclient.NewBreakerClient(client, httpclient.DefaultBreakerConfig("remote-catalog-test"), logger.Discard())
	return NewCatalogSource(bc, server.URL+"/")
}

func TestListProducts_Success(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products", r.URL.Path)
		assert.Equal(t, "sarees", r.URL.Query().Get("category"))
		assert.Equal(t, "price_low", r.URL.Query().Get("sort"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id":"p1","name":"Silk Saree","slug":"silk-saree","price":2500,"sale_price":2000,
				 "images":["a.jpg"],"category_id":"c1","stock_quantity":4,"featured":true,
				 "video_url":"https://cdn.example.com/p1.mp4"},
				{"id":"p2","name":"Cotton Saree","slug":"cotton-saree","price":1200,
				 "images":[],"category_id":"c1","stock_quantity":0,"featured":false}
			],
			"total_count": 14, "page": 2, "per_page": 12, "total_pages": 2,
			"has_next": false, "has_prev": true
		}`))
	})

	page, err := src.ListProducts(context.Background(), catalog.Query{
		CategorySlug: "sarees", SortKey: domain.SortPriceLow, Page: 2, PageSize: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, 14, page.TotalCount)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, int64(2000), page.Rows[0].EffectivePrice())
	assert.True(t, page.Rows[0].HasPreview())
	assert.Nil(t, page.Rows[1].SalePrice)
	assert.False(t, page.Rows[1].InStock())
}

func TestListProducts_OmitsEmptyFilters(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("category"))
		assert.False(t, r.URL.Query().Has("sort"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`{"data":null,"total_count":0}`))
	})

	page, err := src.ListProducts(context.Background(), catalog.Query{})
	require.NoError(t, err)
	assert.NotNil(t, page.Rows)
	assert.Empty(t, page.Rows)
}

func TestListProducts_NotFound(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"category missing"}}`))
	})

	_, err := src.ListProducts(context.Background(), catalog.Query{CategorySlug: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListProducts_ServerError(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := src.ListProducts(context.Background(), catalog.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch products")
}

func TestListProducts_MalformedBody(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	})

	_, err := src.ListProducts(context.Background(), catalog.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode products")
}
