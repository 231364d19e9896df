package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/prakhar3125/ExpenseFlow-backend/auth"
	"github.com/prakhar3125/ExpenseFlow-backend/database"
	"github.com/prakhar3125/ExpenseFlow-backend/handlers"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/middleware"
	"github.com/prakhar3125/ExpenseFlow-backend/services"
)

// Deps is everything the API server needs from the outside.
type Deps struct {
	DB            *database.DB
	Auth          *services.AuthService
	Sources       *services.SourceService
	Expenses      *services.ExpenseService
	Verifier      auth.Verifier
	AllowedOrigin string
	Logger        *logging.Logger
}

// Server represents the API server
type Server struct {
	router         *mux.Router
	logger         *logging.Logger
	allowedOrigin  string
	authHandler    *handlers.AuthHandler
	sourceHandler  *handlers.SourceHandler
	expenseHandler *handlers.ExpenseHandler
}

// NewServer creates a new API server
func NewServer(deps Deps) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		logger:         deps.Logger,
		allowedOrigin:  deps.AllowedOrigin,
		authHandler:    handlers.NewAuthHandler(deps.Auth),
		sourceHandler:  handlers.NewSourceHandler(deps.Sources),
		expenseHandler: handlers.NewExpenseHandler(deps.Expenses),
	}
	s.RegisterRoutes(deps)
	return s
}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes(deps Deps) {
	// Public routes (no auth required)
	s.router.HandleFunc("/health", handlers.HealthCheck(deps.DB)).Methods("GET")
	s.router.HandleFunc("/api/auth/signup", s.authHandler.SignUp).Methods("POST")
	s.router.HandleFunc("/api/auth/login", s.authHandler.Login).Methods("POST")

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Auth(deps.Verifier))

	// Static expense paths go before {id}
	protected.HandleFunc("/expenses", s.expenseHandler.GetExpenses).Methods("GET")
	protected.HandleFunc("/expenses", s.expenseHandler.AddExpense).Methods("POST")
	protected.HandleFunc("/expenses/categories", s.expenseHandler.GetCategories).Methods("GET")
	protected.HandleFunc("/expenses/summary", s.expenseHandler.GetSummary).Methods("GET")
	protected.HandleFunc("/expenses/export", s.expenseHandler.ExportExpenses).Methods("GET")
	protected.HandleFunc("/expenses/{id}", s.expenseHandler.UpdateExpense).Methods("PUT")
	protected.HandleFunc("/expenses/{id}", s.expenseHandler.DeleteExpense).Methods("DELETE")

	protected.HandleFunc("/sources", s.sourceHandler.GetSources).Methods("GET")
	protected.HandleFunc("/sources", s.sourceHandler.CreateSource).Methods("POST")
	protected.HandleFunc("/sources/{id}", s.sourceHandler.UpdateSource).Methods("PUT")
	protected.HandleFunc("/sources/{id}", s.sourceHandler.DeleteSource).Methods("DELETE")
}

// Handler returns the HTTP handler for the API server. CORS sits outermost
// so preflight requests are answered before routing or authentication.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = middleware.Recover(h)
	h = middleware.RequestLogger(s.logger)(h)
	h = middleware.CORS(s.allowedOrigin)(h)
	return h
}
