package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vanisarees/storefront/pkg/logger"
)

// SessionIDHeader identifies the shopper session.
const SessionIDHeader = "X-Session-ID"

// Session reads the shopper session id from SessionIDHeader. A missing or
// malformed id is replaced with a new one. The id is echoed on the response
// and stored in the context (logger.SessionIDFromContext).
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(SessionIDHeader))
		if err != nil {
			id = uuid.New()
		}
		sid := id.String()

		w.Header().Set(SessionIDHeader, sid)
		next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), sid)))
	})
}
