package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/prakhar3125/ExpenseFlow-backend/logging"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthCheck reports whether the database answers.
func HealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logging.FromContext(r.Context()).ErrorContext(r.Context(), "health check failed", logging.FieldError, err)
			respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
