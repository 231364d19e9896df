package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prakhar3125/ExpenseFlow-backend/auth"
)

type stubVerifier struct {
	tokens map[string]auth.Identity
	err    error
}

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	if s.err != nil {
		return auth.Identity{}, s.err
	}
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	return auth.Identity{}, auth.ErrInvalidToken
}

func TestExtractToken(t *testing.T) {
	testCases := []struct {
		name          string
		authHeader    string
		expectedToken string
	}{
		{
			name:          "Valid Bearer token",
			authHeader:    "Bearer test-token-123",
			expectedToken: "test-token-123",
		},
		{
			name:          "Lower case scheme",
			authHeader:    "bearer test-token-123",
			expectedToken: "test-token-123",
		},
		{
			name:          "Missing Bearer prefix",
			authHeader:    "test-token-123",
			expectedToken: "",
		},
		{
			name:          "Basic scheme",
			authHeader:    "Basic dXNlcjpwYXNz",
			expectedToken: "",
		},
		{
			name:          "Empty auth header",
			authHeader:    "",
			expectedToken: "",
		},
		{
			name:          "Bearer with no token",
			authHeader:    "Bearer ",
			expectedToken: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token := extractToken(tc.authHeader)
			if token != tc.expectedToken {
				t.Errorf("Expected token '%s', got '%s'", tc.expectedToken, token)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]auth.Identity{
		"good": {UserID: 42, Email: "a@x.com"},
	}}

	testCases := []struct {
		name           string
		authHeader     string
		verifier       auth.Verifier
		expectedStatus int
		expectedUserID int64
	}{
		{
			name:           "Valid token",
			authHeader:     "Bearer good",
			verifier:       verifier,
			expectedStatus: http.StatusOK,
			expectedUserID: 42,
		},
		{
			name:           "Missing header",
			verifier:       verifier,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown token",
			authHeader:     "Bearer bad",
			verifier:       verifier,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Verifier failure",
			authHeader:     "Bearer good",
			verifier:       stubVerifier{err: errors.New("database down")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotUserID int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := GetUserIDFromContext(r)
				if !ok {
					t.Error("Expected user id in context")
				}
				gotUserID = id
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			Auth(tc.verifier)(next).ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			if gotUserID != tc.expectedUserID {
				t.Errorf("Expected user id %d, got %d", tc.expectedUserID, gotUserID)
			}
			if rr.Code != http.StatusOK {
				var body map[string]string
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
					t.Fatalf("Expected JSON error body: %v", err)
				}
				if body["message"] == "" {
					t.Error("Expected a message in the error body")
				}
			}
		})
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := GetUserIDFromContext(req); ok {
		t.Error("Expected no user id on a bare request")
	}

	req = req.WithContext(WithUser(req.Context(), 7, "a@x.com"))
	id, ok := GetUserIDFromContext(req)
	if !ok || id != 7 {
		t.Errorf("Expected user id 7, got %d (ok=%v)", id, ok)
	}
}
