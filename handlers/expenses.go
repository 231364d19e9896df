package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/prakhar3125/ExpenseFlow-backend/export"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/models"
	"github.com/prakhar3125/ExpenseFlow-backend/services"
)

// ExpenseHandler serves /api/expenses.
type ExpenseHandler struct {
	svc *services.ExpenseService
}

func NewExpenseHandler(svc *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

// GetExpenses handles GET /api/expenses?dateRange=&category=&sourceIds=
func (h *ExpenseHandler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := h.svc.ListExpenses(r.Context(), userID, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, expenses)
}

// AddExpense handles POST /api/expenses
func (h *ExpenseHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.ExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.svc.AddExpense(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, expense)
}

// UpdateExpense handles PUT /api/expenses/{id}
func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req models.ExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.svc.UpdateExpense(r.Context(), userID, id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, expense)
}

// DeleteExpense handles DELETE /api/expenses/{id}
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteExpense(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCategories handles GET /api/expenses/categories
func (h *ExpenseHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	categories, err := h.svc.Categories(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, categories)
}

// GetSummary handles GET /api/expenses/summary
func (h *ExpenseHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	totals, err := h.svc.Summary(r.Context(), userID, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, totals)
}

// ExportExpenses handles GET /api/expenses/export?format=csv|xlsx plus the
// listing filters.
func (h *ExpenseHandler) ExportExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := h.svc.ListExpenses(r.Context(), userID, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Render fully before writing so a failure can still become a 500.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, expenses); err != nil {
		respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("expenses_%s.%s", time.Now().Format("20060102"), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).WarnContext(r.Context(), "export write interrupted",
			logging.FieldOperation, logging.OpExport,
			logging.FieldError, err)
	}
}
