package domain

import "math"

// PlaceholderImage is stored for products that have no images.
const PlaceholderImage = "/placeholder.svg"

// ProductRow is one catalog row as delivered by the data source. It is
// read-only for the shopping-state layer.
type ProductRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Price         int64    `json:"price"`
	SalePrice     *int64   `json:"sale_price,omitempty"`
	Images        []string `json:"images"`
	CategoryID    string   `json:"category_id"`
	StockQuantity int      `json:"stock_quantity"`
	Featured      bool     `json:"featured"`
	VideoURL      *string  `json:"video_url,omitempty"`
}

// EffectivePrice returns the sale price when present, otherwise the list price.
func (p ProductRow) EffectivePrice() int64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// InStock reports whether the product may be added to the cart.
func (p ProductRow) InStock() bool {
	return p.StockQuantity != 0
}

// OnSale reports whether a sale price below the list price is set.
func (p ProductRow) OnSale() bool {
	return p.SalePrice != nil && *p.SalePrice < p.Price
}

// HasPreview reports whether the product carries a hover video.
func (p ProductRow) HasPreview() bool {
	return p.VideoURL != nil && *p.VideoURL != ""
}

// PrimaryImage returns the first image or the placeholder.
func (p ProductRow) PrimaryImage() string {
	if len(p.Images) > 0 && p.Images[0] != "" {
		return p.Images[0]
	}
	return PlaceholderImage
}

// ToCollectionItem snapshots the display data of the product.
func (p ProductRow) ToCollectionItem() CollectionItem {
	return CollectionItem{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.EffectivePrice(),
		Image: p.PrimaryImage(),
		Slug:  p.Slug,
	}
}

// DiscountPercentage returns round((original-sale)/original*100). It is 0 when
// there is no discount to show.
func DiscountPercentage(original, sale int64) int {
	if original <= 0 || sale >= original {
		return 0
	}
	return int(math.Round(float64(original-sale) / float64(original) * 100))
}
