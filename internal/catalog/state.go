// Package catalog holds the listing view state of a catalog page and the
// controller that drives it.
package catalog

import (
	"strings"

	"github.com/vanisarees/storefront/internal/domain"
	"github.com/vanisarees/storefront/pkg/pagination"
)

// State is the view state of one catalog page visit.
type State struct {
	CategorySlug string              `json:"category_slug"`
	SearchTerm   string              `json:"search_term"`
	PriceRange   domain.PriceRange   `json:"price_range"`
	SortKey      domain.SortKey      `json:"sort_key"`
	ViewMode     domain.ViewMode     `json:"view_mode"`
	Page         int                 `json:"page"`
	PageSize     int                 `json:"page_size"`
	Rows         []domain.ProductRow `json:"-"`
	TotalCount   int                 `json:"total_count"`
}

// NewState returns the initial state for a listing. A non-positive pageSize
// falls back to domain.DefaultPageSize.
func NewState(categorySlug string, pageSize int) State {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return State{
		CategorySlug: categorySlug,
		PriceRange:   domain.AnyPrice(),
		SortKey:      domain.SortCreatedAt,
		ViewMode:     domain.ViewGrid,
		Page:         1,
		PageSize:     pageSize,
		Rows:         []domain.ProductRow{},
	}
}

// TotalPages returns ceil(TotalCount / PageSize).
func (s State) TotalPages() int {
	return pagination.TotalPages(s.TotalCount, s.PageSize)
}

// Summary describes the current page within the server result set.
func (s State) Summary() pagination.Summary {
	return pagination.NewSummary(s.TotalCount, pagination.Params{Page: s.Page, PerPage: s.PageSize})
}

// Query is the request handed to a Source for the current state.
func (s State) Query() Query {
	return Query{
		CategorySlug: s.CategorySlug,
		SortKey:      s.SortKey,
		Page:         s.Page,
		PageSize:     s.PageSize,
	}
}

// Event is a closed set of view-state changes.
type Event interface {
	isEvent()
}

type (
	// SearchChanged replaces the search term.
	SearchChanged struct{ Term string }
	// PriceRangeChanged replaces the price filter.
	PriceRangeChanged struct{ Range domain.PriceRange }
	// CategoryChanged switches the listing to another category.
	CategoryChanged struct{ Slug string }
	// SortChanged records the requested server ordering.
	SortChanged struct{ Key domain.SortKey }
	// ViewModeChanged switches between grid and list layout.
	ViewModeChanged struct{ Mode domain.ViewMode }
	// PageRequested navigates to a page.
	PageRequested struct{ Page int }
	// ResultsLoaded stores a page delivered by the Source.
	ResultsLoaded struct {
		Rows       []domain.ProductRow
		TotalCount int
	}
)

func (SearchChanged) isEvent()     {}
func (PriceRangeChanged) isEvent() {}
func (CategoryChanged) isEvent()   {}
func (SortChanged) isEvent()       {}
func (ViewModeChanged) isEvent()   {}
func (PageRequested) isEvent()     {}
func (ResultsLoaded) isEvent()     {}

// Reduce applies ev to s and returns the new state. Filter changes reset the
// page to 1; sort and view mode never touch it.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case SearchChanged:
		s.SearchTerm = e.Term
		s.Page = 1
	case PriceRangeChanged:
		s.PriceRange = e.Range.Normalize()
		s.Page = 1
	case CategoryChanged:
		s.CategorySlug = e.Slug
		s.Page = 1
	case SortChanged:
		s.SortKey = domain.ParseSortKey(string(e.Key))
	case ViewModeChanged:
		s.ViewMode = domain.ParseViewMode(string(e.Mode))
	case PageRequested:
		s.Page = pagination.Clamp(e.Page, s.TotalPages())
	case ResultsLoaded:
		s.Rows = e.Rows
		if s.Rows == nil {
			s.Rows = []domain.ProductRow{}
		}
		s.TotalCount = max(e.TotalCount, 0)
	}
	return s
}

// VisibleItems returns the rows of the fetched page that pass the search and
// price filters. Rows on other server pages are never considered.
func VisibleItems(s State) []domain.ProductRow {
	return FilterRows(s.Rows, s.SearchTerm, s.PriceRange)
}

// FilterRows keeps rows whose name contains term (case-insensitive) and whose
// effective price lies within r. The term is matched as typed, whitespace
// included. Order is preserved.
func FilterRows(rows []domain.ProductRow, term string, r domain.PriceRange) []domain.ProductRow {
	needle := strings.ToLower(term)

	out := make([]domain.ProductRow, 0, len(rows))
	for _, row := range rows {
		if needle != "" && !strings.Contains(strings.ToLower(row.Name), needle) {
			continue
		}
		if !r.Contains(row.EffectivePrice()) {
			continue
		}
		out = append(out, row)
	}
	return out
}
