// Package remote reads catalog pages from the product service over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vanisarees/storefront/internal/catalog"
	"github.com/vanisarees/storefront/internal/domain"
	"github.com/vanisarees/storefront/pkg/httpclient"
	"github.com/vanisarees/storefront/pkg/pagination"
)

const serviceName = "product-service"

// Doer sends HTTP requests. *httpclient.BreakerClient implements it.
type Doer interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// CatalogSource implements catalog.Source against
// GET <base>/api/v1/products.
type CatalogSource struct {
	client  Doer
	baseURL string
}

// NewCatalogSource creates a source for the service at baseURL.
func NewCatalogSource(client Doer, baseURL string) *CatalogSource {
	return &CatalogSource{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// ListProducts fetches one page.
func (s *CatalogSource) ListProducts(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	params := pagination.NewParams(q.Page, q.PageSize)

	v := url.Values{}
	if q.CategorySlug != "" {
		v.Set("category", q.CategorySlug)
	}
	if q.SortKey != "" {
		v.Set("sort", string(q.SortKey))
	}
	v.Set("page", strconv.Itoa(params.Page))
	v.Set("per_page", strconv.Itoa(params.PerPage))

	resp, err := s.client.Get(ctx, s.baseURL+"/api/v1/products?"+v.Encode())
	if err != nil {
		return catalog.Page{}, fmt.Errorf("fetch products: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return catalog.Page{}, httpclient.ParseResponseError(resp, serviceName)
	}
	defer resp.Body.Close()

	var result pagination.Result[domain.ProductRow]
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return catalog.Page{}, fmt.Errorf("decode products: %w", err)
	}
	if result.Data == nil {
		result.Data = []domain.ProductRow{}
	}

	return catalog.Page{Rows: result.Data, TotalCount: result.TotalCount}, nil
}
