package domain

// CollectionItem is a shopper-selected entry in the cart or the wishlist.
// Display fields are copied at insertion time and never re-synced.
type CollectionItem struct {
	ID    string `json:"id" validate:"required,max=128"`
	Name  string `json:"name" validate:"required,max=500"`
	Price int64  `json:"price" validate:"gte=0"`
	Image string `json:"image"`
	Slug  string `json:"slug,omitempty"`
}

// Key returns the identity of the item within a collection.
func (i CollectionItem) Key() string {
	return i.ID
}

// Collection names double as the storage key prefix.
const (
	CollectionCart     = "cart"
	CollectionWishlist = "wishlist"
)
