package http

import (
	"net/http"
	"strings"

	"github.com/soletrade/storefront/pkg/httputil"
	"github.com/soletrade/storefront/pkg/logger"
)

// HeaderSessionID identifies the shopper session on cart and checkout routes.
const HeaderSessionID = "X-Session-ID"

// SessionRequired rejects requests without an X-Session-ID header. The
// RequestLogger middleware has already stored the session ID in context for
// requests that carry one.
func SessionRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get(HeaderSessionID)) == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:    "SESSION_REQUIRED",
					Message: "X-Session-ID header is required",
				},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContentTypeJSON rejects bodied requests that do not declare a JSON
// content type.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
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

func sessionID(r *http.Request) string {
	return logger.SessionIDFromContext(r.Context())
}
