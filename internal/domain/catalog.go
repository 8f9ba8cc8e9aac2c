package domain

import "math"

// DefaultPageSize is the number of rows requested per server page.
const DefaultPageSize = 12

// SortKey selects the server-side ordering of catalog rows.
type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"
	SortCreatedAt SortKey = "created_at"
)

// ValidSortKeys returns the set of supported sort keys.
func ValidSortKeys() []SortKey {
	return []SortKey{SortName, SortPriceLow, SortPriceHigh, SortCreatedAt}
}

// ParseSortKey maps a raw value to a SortKey, falling back to SortCreatedAt.
func ParseSortKey(s string) SortKey {
	for _, k := range ValidSortKeys() {
		if string(k) == s {
			return k
		}
	}
	return SortCreatedAt
}

// ViewMode is the listing layout.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// ParseViewMode maps a raw value to a ViewMode, falling back to ViewGrid.
func ParseViewMode(s string) ViewMode {
	if ViewMode(s) == ViewList {
		return ViewList
	}
	return ViewGrid
}

// PriceRange is an inclusive price filter in minor units.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// AnyPrice matches every non-negative price.
func AnyPrice() PriceRange {
	return PriceRange{Min: 0, Max: math.MaxInt64}
}

// Contains reports whether price lies within [Min, Max].
func (r PriceRange) Contains(price int64) bool {
	return price >= r.Min && price <= r.Max
}

// Normalize swaps inverted bounds and clamps a negative minimum to zero.
func (r PriceRange) Normalize() PriceRange {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	if r.Min < 0 {
		r.Min = 0
	}
	return r
}
