package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/middleware"
	"github.com/prakhar3125/ExpenseFlow-backend/models"
	"github.com/prakhar3125/ExpenseFlow-backend/services"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "encode response",
			logging.FieldPath, r.URL.Path,
			logging.FieldError, err)
	}
}

func respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, models.MessageResponse{Message: message})
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a business error's own message, or a generic one for
// anything unexpected. Internal details only go to the log.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	var svcErr *services.Error
	if status == http.StatusInternalServerError || !errors.As(err, &svcErr) {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			logging.FieldMethod, r.Method,
			logging.FieldPath, r.URL.Path,
			logging.FieldError, err)
		respondMessage(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	respondMessage(w, r, status, svcErr.Message)
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		respondMessage(w, r, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// requireUser reads the authenticated user id, answering 401 if absent.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r)
	if !ok {
		respondMessage(w, r, http.StatusUnauthorized, "User ID not found in context")
		return 0, false
	}
	return userID, true
}
