package middleware

import (
	"net/http"
	"strings"
)

const allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"

// CORS allows browser access from a single front-end origin. Preflight
// requests are answered here, before routing, so the router never sees an
// OPTIONS request it has no route for.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	allowed := normalizeOrigin(allowedOrigin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")

			if isAllowedOrigin(origin, allowed) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)

				// Any header is allowed: echo what the browser asked for.
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					w.Header().Add("Vary", "Access-Control-Request-Headers")
					w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
				} else {
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				}
				w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}

// isAllowedOrigin checks the request origin against the configured one.
func isAllowedOrigin(origin, allowed string) bool {
	if origin == "" || allowed == "" {
		return false
	}
	return strings.EqualFold(normalizeOrigin(origin), allowed)
}
