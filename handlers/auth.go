package handlers

import (
	"net/http"

	"github.com/prakhar3125/ExpenseFlow-backend/models"
	"github.com/prakhar3125/ExpenseFlow-backend/services"
)

// AuthHandler serves signup and login.
type AuthHandler struct {
	svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}

	if _, err := h.svc.SignUp(r.Context(), creds.Email, creds.Password); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "User registered successfully")
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}

	resp, err := h.svc.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp)
}
