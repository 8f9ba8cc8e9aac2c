package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vanisarees/storefront/internal/catalog"
	"github.com/vanisarees/storefront/internal/domain"
	"github.com/vanisarees/storefront/internal/session"
	apperrors "github.com/vanisarees/storefront/pkg/errors"
	"github.com/vanisarees/storefront/pkg/httputil"
)

// CatalogHandler serves the catalog listing of a session.
type CatalogHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(sessions *session.Manager, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{sessions: sessions, logger: logger}
}

// --- Response DTOs ---

// ListingResponse is a catalog listing plus the pending UI signals.
type ListingResponse struct {
	catalog.Listing
	Signals []catalog.Signal `json:"signals"`
}

// CollectionChangeResponse reports the outcome of an add or toggle from the
// listing.
type CollectionChangeResponse struct {
	ProductID  string           `json:"product_id"`
	Changed    bool             `json:"changed"`
	InCart     bool             `json:"in_cart"`
	Wishlisted bool             `json:"wishlisted"`
	CartCount  int              `json:"cart_count"`
	Signals    []catalog.Signal `json:"signals"`
}

// OpenProductResponse carries the slug of the product page to show.
type OpenProductResponse struct {
	Slug    string           `json:"slug"`
	Signals []catalog.Signal `json:"signals"`
}

// PreviewResponse describes the hover preview.
type PreviewResponse struct {
	State     string `json:"state"`
	ProductID string `json:"product_id,omitempty"`
	Active    string `json:"active,omitempty"`
}

// --- Helpers ---

func (h *CatalogHandler) view(w http.ResponseWriter, r *http.Request) (*session.Session, *catalog.Controller, bool) {
	s, err := currentSession(r.Context(), h.sessions)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, nil, false
	}
	view := s.Catalog()
	if view == nil {
		httputil.WriteError(w, r, apperrors.Conflict("no catalog page is open"), h.logger)
		return nil, nil, false
	}
	return s, view, true
}

func (h *CatalogHandler) product(w http.ResponseWriter, r *http.Request, view *catalog.Controller) (domain.ProductRow, bool) {
	id := chi.URLParam(r, "id")
	p, ok := view.Product(id)
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound("product", id), h.logger)
		return domain.ProductRow{}, false
	}
	return p, true
}

// refresh loads the current page. Failures of the catalog backend surface as
// 503 unless the backend already classified them.
func (h *CatalogHandler) refresh(w http.ResponseWriter, r *http.Request, view *catalog.Controller) bool {
	err := view.Refresh(r.Context())
	if err == nil {
		return true
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		err = apperrors.Unavailable("catalog", err)
	}
	httputil.WriteError(w, r, err, h.logger)
	return false
}

func listing(s *session.Session, view *catalog.Controller) ListingResponse {
	return ListingResponse{Listing: view.Listing(), Signals: s.Signals.Drain()}
}

func parseInt64(r *http.Request, name string) (int64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, apperrors.InvalidInput(name + " must be an integer")
	}
	return v, true, nil
}

// priceRange reads min_price and max_price. Either bound may be omitted.
func priceRange(r *http.Request) (domain.PriceRange, bool, error) {
	pr := domain.AnyPrice()
	lo, hasLo, err := parseInt64(r, "min_price")
	if err != nil {
		return pr, false, err
	}
	hi, hasHi, err := parseInt64(r, "max_price")
	if err != nil {
		return pr, false, err
	}
	if hasLo {
		pr.Min = lo
	}
	if hasHi {
		pr.Max = hi
	}
	return pr, hasLo || hasHi, nil
}

// --- Handlers ---

// Open handles GET /api/v1/catalog. It starts a new page visit from the query
// parameters category, q, min_price, max_price, sort, view and page.
func (h *CatalogHandler) Open(w http.ResponseWriter, r *http.Request) {
	s, err := currentSession(r.Context(), h.sessions)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	pr, hasRange, err := priceRange(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	page, hasPage, err := parseInt64(r, "page")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view := s.OpenCatalog(q.Get("category"))
	view.SetSearchTerm(q.Get("q"))
	if hasRange {
		view.SetPriceRange(pr)
	}
	view.SetSortKey(domain.ParseSortKey(q.Get("sort")))
	view.SetViewMode(domain.ParseViewMode(q.Get("view")))

	if !h.refresh(w, r, view) {
		return
	}
	// The page can only be clamped once the total is known.
	if hasPage && page > 1 {
		if view.GoToPage(int(page)) > 1 && !h.refresh(w, r, view) {
			return
		}
	}

	httputil.WriteData(w, http.StatusOK, listing(s, view))
}

// GoToPage handles POST /api/v1/catalog/page/{page}
func (h *CatalogHandler) GoToPage(w http.ResponseWriter, r *http.Request) {
	s, view, ok := h.view(w, r)
	if !ok {
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("page must be an integer"), h.logger)
		return
	}

	view.GoToPage(page)
	if !h.refresh(w, r, view) {
		return
	}
	httputil.WriteData(w, http.StatusOK, listing(s, view))
}

// AddToCart handles POST /api/v1/catalog/products/{id}/cart
func (h *CatalogHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	s, view, ok := h.view(w, r)
	if !ok {
		return
	}
	p, ok := h.product(w, r, view)
	if !ok {
		return
	}
	if !p.InStock() {
		httputil.WriteError(w, r, apperrors.OutOfStock(p.ID), h.logger)
		return
	}

	changed := view.AddToCart(p)
	status := http.StatusOK
	if changed {
		status = http.StatusCreated
	}
	httputil.WriteData(w, status, h.changeResponse(s, p.ID, changed))
}

// ToggleWishlist handles POST /api/v1/catalog/products/{id}/wishlist
func (h *CatalogHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	s, view, ok := h.view(w, r)
	if !ok {
		return
	}
	p, ok := h.product(w, r, view)
	if !ok {
		return
	}

	before := s.Wishlist.Contains(p.ID)
	after := view.ToggleWishlist(p)
	httputil.WriteData(w, http.StatusOK, h.changeResponse(s, p.ID, before != after))
}

func (h *CatalogHandler) changeResponse(s *session.Session, id string, changed bool) CollectionChangeResponse {
	return CollectionChangeResponse{
		ProductID:  id,
		Changed:    changed,
		InCart:     s.Cart.Contains(id),
		Wishlisted: s.Wishlist.Contains(id),
		CartCount:  s.Cart.Len(),
		Signals:    s.Signals.Drain(),
	}
}

// OpenProduct handles POST /api/v1/catalog/products/{id}/open
func (h *CatalogHandler) OpenProduct(w http.ResponseWriter, r *http.Request) {
	s, view, ok := h.view(w, r)
	if !ok {
		return
	}
	p, ok := h.product(w, r, view)
	if !ok {
		return
	}

	slug := view.OpenProduct(p)
	httputil.WriteData(w, http.StatusOK, OpenProductResponse{Slug: slug, Signals: s.Signals.Drain()})
}

// Preview handles GET /api/v1/catalog/preview
func (h *CatalogHandler) Preview(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.view(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, http.StatusOK, previewResponse(view))
}

// PointerEnter handles PUT /api/v1/catalog/preview/{id}. The preview becomes
// active once the pointer has rested for the dwell time.
func (h *CatalogHandler) PointerEnter(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.view(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !view.PointerEnter(id) {
		httputil.WriteError(w, r, apperrors.NotFound("product", id), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, previewResponse(view))
}

// PointerLeave handles DELETE /api/v1/catalog/preview
func (h *CatalogHandler) PointerLeave(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.view(w, r)
	if !ok {
		return
	}
	view.PointerLeave()
	httputil.WriteData(w, http.StatusOK, previewResponse(view))
}

func previewResponse(view *catalog.Controller) PreviewResponse {
	state, id := view.PreviewState()
	return PreviewResponse{State: state.String(), ProductID: id, Active: view.Previewing()}
}
