package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vanisarees/storefront/internal/domain"
	"github.com/vanisarees/storefront/internal/hover"
	"github.com/vanisarees/storefront/pkg/logger"
	"github.com/vanisarees/storefront/pkg/pagination"
	"github.com/vanisarees/storefront/pkg/slug"
)

// ListingRow is a visible row decorated with the shopper's collections.
type ListingRow struct {
	domain.ProductRow
	EffectivePrice     int64 `json:"effective_price"`
	DiscountPercentage int   `json:"discount_percentage"`
	InStock            bool  `json:"in_stock"`
	InCart             bool  `json:"in_cart"`
	Wishlisted         bool  `json:"wishlisted"`
}

// Listing is everything a listing page renders.
type Listing struct {
	Items      []ListingRow       `json:"items"`
	Filters    State              `json:"filters"`
	Pagination pagination.Summary `json:"pagination"`
	Previewing string             `json:"previewing,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithPageSize sets the number of rows requested per server page.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.state.PageSize = n
		}
	}
}

// WithCategory scopes the listing to a category slug.
func WithCategory(slug string) Option {
	return func(c *Controller) { c.state.CategorySlug = slug }
}

// WithHoverOptions configures the hover preview scheduler.
func WithHoverOptions(opts ...hover.Option) Option {
	return func(c *Controller) { c.hoverOpts = append(c.hoverOpts, opts...) }
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller owns the view state of one catalog page visit. It is safe for
// concurrent use.
type Controller struct {
	source   Source
	cart     Collection
	wishlist Collection
	signals  Signals
	logger   *slog.Logger

	hoverOpts []hover.Option
	hover     *hover.Scheduler

	mu    sync.Mutex
	state State
}

// NewController creates a controller for a fresh page visit.
func NewController(source Source, cart, wishlist Collection, signals Signals, opts ...Option) *Controller {
	if signals == nil {
		signals = Discard{}
	}
	c := &Controller{
		source:   source,
		cart:     cart,
		wishlist: wishlist,
		signals:  signals,
		logger:   logger.Discard(),
		state:    NewState("", domain.DefaultPageSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.hover = hover.New(c.hoverOpts...)
	return c
}

// State returns a copy of the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Dispatch applies ev and returns the resulting state.
func (c *Controller) Dispatch(ev Event) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Reduce(c.state, ev)
	return c.state
}

// SetSearchTerm replaces the search term and returns to page 1.
func (c *Controller) SetSearchTerm(term string) {
	c.Dispatch(SearchChanged{Term: term})
}

// SetPriceRange replaces the price filter and returns to page 1.
func (c *Controller) SetPriceRange(r domain.PriceRange) {
	c.Dispatch(PriceRangeChanged{Range: r})
}

// SetCategory switches category and returns to page 1.
func (c *Controller) SetCategory(slug string) {
	c.Dispatch(CategoryChanged{Slug: slug})
}

// SetSortKey records the requested ordering. The page is kept; the caller
// re-queries the source with Refresh.
func (c *Controller) SetSortKey(key domain.SortKey) {
	c.Dispatch(SortChanged{Key: key})
}

// SetViewMode switches the layout.
func (c *Controller) SetViewMode(mode domain.ViewMode) {
	c.Dispatch(ViewModeChanged{Mode: mode})
}

// GoToPage navigates to page n, clamped to the known page range, and asks the
// UI to scroll to the top. It returns the page actually selected.
func (c *Controller) GoToPage(n int) int {
	s := c.Dispatch(PageRequested{Page: n})
	c.signals.Emit(Signal{Kind: SignalScrollTop})
	return s.Page
}

// Refresh loads the page described by the current state from the source.
// Source errors are returned and leave the previous rows in place. Results
// for a query that no longer matches the state are discarded.
func (c *Controller) Refresh(ctx context.Context) error {
	q := c.State().Query()

	page, err := c.source.ListProducts(ctx, q)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	c.mu.Lock()
	if c.state.Query() != q {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "discarding stale catalog page",
			slog.Int("page", q.Page),
			slog.String("sort", string(q.SortKey)),
		)
		return nil
	}
	c.state = Reduce(c.state, ResultsLoaded{Rows: page.Rows, TotalCount: page.TotalCount})
	hoverState, target := c.hover.State()
	_, listed := c.findLocked(target)
	c.mu.Unlock()

	if hoverState != hover.Idle && !listed {
		c.hover.Leave()
	}

	c.logger.DebugContext(ctx, "catalog page loaded",
		slog.String("category", q.CategorySlug),
		slog.Int("page", q.Page),
		slog.Int("rows", len(page.Rows)),
		slog.Int("total_count", page.TotalCount),
	)
	return nil
}

// VisibleItems returns the filtered rows of the current page.
func (c *Controller) VisibleItems() []domain.ProductRow {
	c.mu.Lock()
	defer c.mu.Unlock()

	return VisibleItems(c.state)
}

// Listing returns the visible rows with collection membership, pagination and
// the previewing item.
func (c *Controller) Listing() Listing {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	visible := VisibleItems(state)
	rows := make([]ListingRow, 0, len(visible))
	for _, p := range visible {
		rows = append(rows, ListingRow{
			ProductRow:         p,
			EffectivePrice:     p.EffectivePrice(),
			DiscountPercentage: discountOf(p),
			InStock:            p.InStock(),
			InCart:             c.cart.Contains(p.ID),
			Wishlisted:         c.wishlist.Contains(p.ID),
		})
	}

	return Listing{
		Items:      rows,
		Filters:    state,
		Pagination: state.Summary(),
		Previewing: c.hover.Active(),
	}
}

func discountOf(p domain.ProductRow) int {
	if !p.OnSale() {
		return 0
	}
	return domain.DiscountPercentage(p.Price, *p.SalePrice)
}

// Product looks up a row of the current page by id.
func (c *Controller) Product(id string) (domain.ProductRow, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.findLocked(id)
}

func (c *Controller) findLocked(id string) (domain.ProductRow, bool) {
	if id == "" {
		return domain.ProductRow{}, false
	}
	for _, p := range c.state.Rows {
		if p.ID == id {
			return p, true
		}
	}
	return domain.ProductRow{}, false
}

// AddToCart snapshots p into the cart. Out-of-stock products and products
// already in the cart are rejected.
func (c *Controller) AddToCart(p domain.ProductRow) bool {
	if !p.InStock() {
		c.logger.Debug("rejected out of stock product", slog.String("product_id", p.ID))
		return false
	}
	return c.cart.Add(p.ToCollectionItem())
}

// ToggleWishlist removes p from the wishlist when present, otherwise adds it.
// It reports whether p is wishlisted afterwards.
func (c *Controller) ToggleWishlist(p domain.ProductRow) bool {
	if c.wishlist.Contains(p.ID) {
		c.wishlist.Remove(p.ID)
		return false
	}
	return c.wishlist.Add(p.ToCollectionItem())
}

// OpenProduct asks the UI to show the product page and returns its slug. A
// row without a slug gets one derived from its name.
func (c *Controller) OpenProduct(p domain.ProductRow) string {
	s := p.Slug
	if s == "" {
		s = slug.Generate(p.Name)
	}
	c.signals.Emit(Signal{Kind: SignalShowProduct, Slug: s})
	return s
}

// PointerEnter starts the dwell timer for a product of the current page. It
// reports false for unknown ids.
func (c *Controller) PointerEnter(id string) bool {
	if _, ok := c.Product(id); !ok {
		return false
	}
	c.hover.Enter(id)
	return true
}

// PointerLeave cancels or ends the preview.
func (c *Controller) PointerLeave() {
	c.hover.Leave()
}

// Previewing returns the id whose preview is active, or "".
func (c *Controller) Previewing() string {
	return c.hover.Active()
}

// PreviewState returns the hover state and the product it refers to.
func (c *Controller) PreviewState() (hover.State, string) {
	return c.hover.State()
}

// Close cancels the hover timer. Call it when the shopper leaves the page.
func (c *Controller) Close() {
	c.hover.Close()
}
