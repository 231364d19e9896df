package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/prakhar3125/ExpenseFlow-backend/auth"
	"github.com/prakhar3125/ExpenseFlow-backend/config"
	"github.com/prakhar3125/ExpenseFlow-backend/database"
	"github.com/prakhar3125/ExpenseFlow-backend/events"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/middleware"
	"github.com/prakhar3125/ExpenseFlow-backend/repository"
	"github.com/prakhar3125/ExpenseFlow-backend/services"
)

// testEnv bundles an in-memory database, the services on top of it and a
// router exposing every handler without the auth middleware.
type testEnv struct {
	db       *database.DB
	authSvc  *services.AuthService
	recorder *events.Recorder
	router   *mux.Router
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite3", Path: ":memory:"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(logging.Discard()); err != nil {
		t.Fatalf("migrate database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	q := repository.New(db, db.Dialect)
	tokens := auth.NewTokenManager("test-secret", "expenseflow", time.Hour)
	recorder := &events.Recorder{}

	authSvc := services.NewAuthService(q, auth.NewPasswordHasher(4), tokens, logging.Discard())
	authH := NewAuthHandler(authSvc)
	sourceH := NewSourceHandler(services.NewSourceService(db, recorder, logging.Discard()))
	expenseH := NewExpenseHandler(services.NewExpenseService(db, recorder, logging.Discard()))

	r := mux.NewRouter()
	r.HandleFunc("/health", HealthCheck(db)).Methods("GET")
	r.HandleFunc("/api/auth/signup", authH.SignUp).Methods("POST")
	r.HandleFunc("/api/auth/login", authH.Login).Methods("POST")
	r.HandleFunc("/api/sources", sourceH.GetSources).Methods("GET")
	r.HandleFunc("/api/sources", sourceH.CreateSource).Methods("POST")
	r.HandleFunc("/api/sources/{id}", sourceH.UpdateSource).Methods("PUT")
	r.HandleFunc("/api/sources/{id}", sourceH.DeleteSource).Methods("DELETE")
	r.HandleFunc("/api/expenses/categories", expenseH.GetCategories).Methods("GET")
	r.HandleFunc("/api/expenses/summary", expenseH.GetSummary).Methods("GET")
	r.HandleFunc("/api/expenses/export", expenseH.ExportExpenses).Methods("GET")
	r.HandleFunc("/api/expenses", expenseH.GetExpenses).Methods("GET")
	r.HandleFunc("/api/expenses", expenseH.AddExpense).Methods("POST")
	r.HandleFunc("/api/expenses/{id}", expenseH.UpdateExpense).Methods("PUT")
	r.HandleFunc("/api/expenses/{id}", expenseH.DeleteExpense).Methods("DELETE")

	return &testEnv{db: db, authSvc: authSvc, recorder: recorder, router: r}
}

// serve runs req through the test router.
func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createUser signs up a user directly through the service.
func (e *testEnv) createUser(t *testing.T, email string) int64 {
	t.Helper()
	u, err := e.authSvc.SignUp(t.Context(), email, "password")
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return u.ID
}

// NewRequest creates a JSON request without authentication.
func NewRequest(method, url string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, url, nil)
	}
	var buf []byte
	switch b := body.(type) {
	case string:
		buf = []byte(b)
	default:
		buf, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, url, bytes.NewBuffer(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates a request as if the auth middleware had
// already resolved userID.
func NewAuthenticatedRequest(method, url string, body interface{}, userID int64) *http.Request {
	req := NewRequest(method, url, body)
	return req.WithContext(middleware.WithUser(req.Context(), userID, ""))
}

// decodeBody unmarshals the recorder's JSON body into v.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}
