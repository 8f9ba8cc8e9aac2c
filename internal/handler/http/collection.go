package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vanisarees/storefront/internal/catalog"
	"github.com/vanisarees/storefront/internal/collection"
	"github.com/vanisarees/storefront/internal/domain"
	"github.com/vanisarees/storefront/internal/session"
	apperrors "github.com/vanisarees/storefront/pkg/errors"
	"github.com/vanisarees/storefront/pkg/httputil"
	"github.com/vanisarees/storefront/pkg/validator"
)

// CollectionHandler serves the cart and wishlist endpoints.
type CollectionHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewCollectionHandler creates a new collection HTTP handler.
func NewCollectionHandler(sessions *session.Manager, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{sessions: sessions, logger: logger}
}

// CollectionResponse is the body of every cart and wishlist response.
type CollectionResponse struct {
	Items   []domain.CollectionItem `json:"items"`
	Count   int                     `json:"count"`
	IsOpen  bool                    `json:"is_open"`
	Changed *bool                   `json:"changed,omitempty"`
	Signals []catalog.Signal        `json:"signals"`
}

type store = collection.Store[domain.CollectionItem]

func pick(s *session.Session, name string) *store {
	if name == domain.CollectionWishlist {
		return s.Wishlist
	}
	return s.Cart
}

func collectionResponse(s *session.Session, st *store, changed *bool) CollectionResponse {
	items := st.Items()
	return CollectionResponse{
		Items:   items,
		Count:   len(items),
		IsOpen:  st.IsOpen(),
		Changed: changed,
		Signals: s.Signals.Drain(),
	}
}

// serve resolves the session and collection, then runs fn.
func (h *CollectionHandler) serve(name string, fn func(w http.ResponseWriter, r *http.Request, s *session.Session, st *store)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := currentSession(r.Context(), h.sessions)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		fn(w, r, s, pick(s, name))
	}
}

// Get handles GET /api/v1/{collection}
func (h *CollectionHandler) Get(name string) http.HandlerFunc {
	return h.serve(name, func(w http.ResponseWriter, _ *http.Request, s *session.Session, st *store) {
		httputil.WriteData(w, http.StatusOK, collectionResponse(s, st, nil))
	})
}

// Clear handles DELETE /api/v1/{collection}
func (h *CollectionHandler) Clear(name string) http.HandlerFunc {
	return h.serve(name, func(w http.ResponseWriter, _ *http.Request, s *session.Session, st *store) {
		changed := st.Clear()
		httputil.WriteData(w, http.StatusOK, collectionResponse(s, st, &changed))
	})
}

// AddItem handles POST /api/v1/{collection}/items. Adding an item that is
// already present succeeds with changed=false and keeps the original entry.
func (h *CollectionHandler) AddItem(name string) http.HandlerFunc {
	return h.serve(name, func(w http.ResponseWriter, r *http.Request, s *session.Session, st *store) {
		var item domain.CollectionItem
		if err := validator.DecodeAndValidate(r, &item); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		changed := st.Add(item)
		status := http.StatusOK
		if changed {
			status = http.StatusCreated
		}
		httputil.WriteData(w, status, collectionResponse(s, st, &changed))
	})
}

// RemoveItem handles DELETE /api/v1/{collection}/items/{id}
func (h *CollectionHandler) RemoveItem(name string) http.HandlerFunc {
	return h.serve(name, func(w http.ResponseWriter, r *http.Request, s *session.Session, st *store) {
		id := chi.URLParam(r, "id")
		if id == "" {
			httputil.WriteError(w, r, apperrors.InvalidInput("item id is required"), h.logger)
			return
		}

		changed := st.Remove(id)
		httputil.WriteData(w, http.StatusOK, collectionResponse(s, st, &changed))
	})
}

// Toggle handles POST /api/v1/{collection}/toggle
func (h *CollectionHandler) Toggle(name string) http.HandlerFunc {
	return h.serve(name, func(w http.ResponseWriter, _ *http.Request, s *session.Session, st *store) {
		st.ToggleOpen()
		httputil.WriteData(w, http.StatusOK, collectionResponse(s, st, nil))
	})
}
