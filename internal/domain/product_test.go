package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(n int64) *int64 { return &n }
func strPtr(s string) *string { return &s }

// ============================================================================
// DiscountPercentage Tests
// ============================================================================

func TestDiscountPercentage_Quarter(t *testing.T) {
	assert.Equal(t, 25, DiscountPercentage(1000, 750))
}

func TestDiscountPercentage_Rounds(t *testing.T) {
	// 1/3 off rounds to 33, 2/3 off rounds to 67.
	assert.Equal(t, 33, DiscountPercentage(300, 200))
	assert.Equal(t, 67, DiscountPercentage(300, 100))
}

func TestDiscountPercentage_NoDiscount(t *testing.T) {
	assert.Equal(t, 0, DiscountPercentage(1000, 1000))
	assert.Equal(t, 0, DiscountPercentage(1000, 1200))
}

func TestDiscountPercentage_ZeroOriginal(t *testing.T) {
	assert.Equal(t, 0, DiscountPercentage(0, 0))
}

// ============================================================================
// ProductRow Tests
// ============================================================================

func TestEffectivePrice_UsesSalePrice(t *testing.T) {
	p := ProductRow{Price: 2000, SalePrice: int64Ptr(1500)}
	assert.Equal(t, int64(1500), p.EffectivePrice())
	assert.True(t, p.OnSale())
}

func TestEffectivePrice_FallsBackToPrice(t *testing.T) {
	p := ProductRow{Price: 2000}
	assert.Equal(t, int64(2000), p.EffectivePrice())
	assert.False(t, p.OnSale())
}

func TestInStock(t *testing.T) {
	assert.False(t, ProductRow{StockQuantity: 0}.InStock())
	assert.True(t, ProductRow{StockQuantity: 3}.InStock())
}

func TestHasPreview(t *testing.T) {
	assert.False(t, ProductRow{}.HasPreview())
	assert.False(t, ProductRow{VideoURL: strPtr("")}.HasPreview())
	assert.True(t, ProductRow{VideoURL: strPtr("https://cdn.example.com/p.mp4")}.HasPreview())
}

func TestPrimaryImage_Placeholder(t *testing.T) {
	assert.Equal(t, PlaceholderImage, ProductRow{}.PrimaryImage())
	assert.Equal(t, PlaceholderImage, ProductRow{Images: []string{""}}.PrimaryImage())
	assert.Equal(t, "a.jpg", ProductRow{Images: []string{"a.jpg", "b.jpg"}}.PrimaryImage())
}

func TestToCollectionItem(t *testing.T) {
	p := ProductRow{
		ID:        "p1",
		Name:      "Silk Saree",
		Slug:      "silk-saree",
		Price:     2000,
		SalePrice: int64Ptr(1800),
		Images:    []string{"x.jpg"},
	}

	item := p.ToCollectionItem()

	assert.Equal(t, CollectionItem{ID: "p1", Name: "Silk Saree", Price: 1800, Image: "x.jpg", Slug: "silk-saree"}, item)
	assert.Equal(t, "p1", item.Key())
}

// ============================================================================
// Catalog value Tests
// ============================================================================

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortName, ParseSortKey("name"))
	assert.Equal(t, SortPriceLow, ParseSortKey("price_low"))
	assert.Equal(t, SortPriceHigh, ParseSortKey("price_high"))
	assert.Equal(t, SortCreatedAt, ParseSortKey("created_at"))
	assert.Equal(t, SortCreatedAt, ParseSortKey("bogus"))
}

func TestParseViewMode(t *testing.T) {
	assert.Equal(t, ViewList, ParseViewMode("list"))
	assert.Equal(t, ViewGrid, ParseViewMode("grid"))
	assert.Equal(t, ViewGrid, ParseViewMode(""))
}

func TestPriceRange_ContainsInclusive(t *testing.T) {
	r := PriceRange{Min: 100, Max: 200}
	assert.True(t, r.Contains(100))
	assert.True(t, r.Contains(200))
	assert.False(t, r.Contains(99))
	assert.False(t, r.Contains(201))
}

func TestPriceRange_Normalize(t *testing.T) {
	assert.Equal(t, PriceRange{Min: 100, Max: 500}, PriceRange{Min: 500, Max: 100}.Normalize())
	assert.Equal(t, PriceRange{Min: 0, Max: 50}, PriceRange{Min: -10, Max: 50}.Normalize())
}

func TestAnyPrice(t *testing.T) {
	r := AnyPrice()
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(math.MaxInt64))
}
