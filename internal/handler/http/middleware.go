package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vanisarees/storefront/internal/session"
	"github.com/vanisarees/storefront/pkg/httputil"
	"github.com/vanisarees/storefront/pkg/logger"
)

type sessionKey struct{}

// LeaseSession resolves the shopper session once per request and holds a
// lease on it until the handler returns, so the idle sweeper cannot close
// the session while the request is still changing it.
func LeaseSession(sessions *session.Manager, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, release, err := sessions.Acquire(r.Context(), logger.SessionIDFromContext(r.Context()))
			if err != nil {
				httputil.WriteError(w, r, err, l)
				return
			}
			defer release()

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

// currentSession returns the session leased for this request, falling back
// to a plain lookup when no lease was taken.
func currentSession(ctx context.Context, sessions *session.Manager) (*session.Session, error) {
	if s, ok := ctx.Value(sessionKey{}).(*session.Session); ok {
		return s, nil
	}
	return sessions.Get(ctx, logger.SessionIDFromContext(ctx))
}

// ContentTypeJSON rejects request bodies that are not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
