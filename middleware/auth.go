package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/prakhar3125/ExpenseFlow-backend/auth"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
)

// Auth resolves the bearer token to a local user and stores the user id in
// the request context. Requests without a valid token get 401.
func Auth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context()).WithComponent(logging.ComponentAuth)

			token := extractToken(r.Header.Get("Authorization"))
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
				return
			}

			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					logger.WarnContext(r.Context(), "rejected bearer token", logging.FieldError, err)
					writeError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
					return
				}
				logger.ErrorContext(r.Context(), "token verification failed", logging.FieldError, err)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := WithUser(r.Context(), id.UserID, id.Email)
			ctx = logging.WithContext(ctx, logging.FromContext(ctx).With(logging.FieldUserID, id.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken gets the token from the Authorization header
func extractToken(authHeader string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, userID int64, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserEmailKey, email)
}

// GetUserIDFromContext retrieves the user ID from the request context
func GetUserIDFromContext(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDKey).(int64)
	return userID, ok && userID > 0
}
