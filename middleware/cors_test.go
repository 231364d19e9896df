package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsAllowedOrigin(t *testing.T) {
	allowed := "http://localhost:3000"

	testCases := []struct {
		name     string
		origin   string
		expected bool
	}{
		{
			name:     "Allowed origin",
			origin:   "http://localhost:3000",
			expected: true,
		},
		{
			name:     "Trailing slash",
			origin:   "http://localhost:3000/",
			expected: true,
		},
		{
			name:     "Different port",
			origin:   "http://localhost:5173",
			expected: false,
		},
		{
			name:     "Disallowed origin",
			origin:   "https://evil.com",
			expected: false,
		},
		{
			name:     "Empty origin",
			origin:   "",
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := isAllowedOrigin(tc.origin, allowed)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v for origin %s", tc.expected, result, tc.origin)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CORS("http://localhost:3000")(next)

	testCases := []struct {
		name            string
		method          string
		origin          string
		requestHeaders  string
		expectedStatus  int
		expectNext      bool
		expectAllowed   bool
		expectedHeaders string
	}{
		{
			name:            "Preflight from allowed origin",
			method:          http.MethodOptions,
			origin:          "http://localhost:3000",
			requestHeaders:  "authorization, content-type, x-custom",
			expectedStatus:  http.StatusOK,
			expectNext:      false,
			expectAllowed:   true,
			expectedHeaders: "authorization, content-type, x-custom",
		},
		{
			name:           "Preflight from other origin",
			method:         http.MethodOptions,
			origin:         "https://evil.com",
			expectedStatus: http.StatusOK,
			expectNext:     false,
			expectAllowed:  false,
		},
		{
			name:            "Simple request from allowed origin",
			method:          http.MethodGet,
			origin:          "http://localhost:3000",
			expectedStatus:  http.StatusTeapot,
			expectNext:      true,
			expectAllowed:   true,
			expectedHeaders: "Content-Type, Authorization",
		},
		{
			name:           "Request without origin",
			method:         http.MethodGet,
			expectedStatus: http.StatusTeapot,
			expectNext:     true,
			expectAllowed:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nextCalled = false
			req := httptest.NewRequest(tc.method, "/api/sources", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.requestHeaders != "" {
				req.Header.Set("Access-Control-Request-Method", "POST")
				req.Header.Set("Access-Control-Request-Headers", tc.requestHeaders)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			if nextCalled != tc.expectNext {
				t.Errorf("Expected next called = %v, got %v", tc.expectNext, nextCalled)
			}

			acao := rr.Header().Get("Access-Control-Allow-Origin")
			if tc.expectAllowed {
				if acao != tc.origin {
					t.Errorf("Expected Access-Control-Allow-Origin %q, got %q", tc.origin, acao)
				}
				if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
					t.Error("Expected credentials to be allowed")
				}
				if got := rr.Header().Get("Access-Control-Allow-Methods"); got != allowedMethods {
					t.Errorf("Expected methods %q, got %q", allowedMethods, got)
				}
				if got := rr.Header().Get("Access-Control-Allow-Headers"); got != tc.expectedHeaders {
					t.Errorf("Expected allowed headers %q, got %q", tc.expectedHeaders, got)
				}
			} else if acao != "" {
				t.Errorf("Expected no Access-Control-Allow-Origin, got %q", acao)
			}
		})
	}
}
