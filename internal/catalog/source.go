package catalog

import (
	"context"

	"github.com/vanisarees/storefront/internal/domain"
)

// Query asks a Source for one server page.
type Query struct {
	CategorySlug string
	SortKey      domain.SortKey
	Page         int
	PageSize     int
}

// Page is one server page plus the total number of matching rows.
type Page struct {
	Rows       []domain.ProductRow
	TotalCount int
}

// Source delivers paginated, sorted catalog rows.
type Source interface {
	ListProducts(ctx context.Context, q Query) (Page, error)
}

// Collection is the subset of a collection store the controller needs.
type Collection interface {
	Add(item domain.CollectionItem) bool
	Remove(key string) bool
	Contains(key string) bool
}
