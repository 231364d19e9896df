package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/prakhar3125/ExpenseFlow-backend/models"
)

// parseID reads the {id} path variable.
func parseID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// parseSourceIDs accepts repeated params, the bracket form and comma
// separated lists, in any mix.
func parseSourceIDs(r *http.Request) ([]int64, error) {
	q := r.URL.Query()
	raw := append(q["sourceIds"], q["sourceIds[]"]...)

	var ids []int64
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid source id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// parseFilter reads dateRange, category and sourceIds. dateRange defaults
// to 30 days.
func parseFilter(r *http.Request) (models.ExpenseFilter, error) {
	q := r.URL.Query()
	f := models.ExpenseFilter{
		DateRangeDays: models.DefaultDateRangeDays,
		Category:      q.Get("category"),
	}

	if raw := strings.TrimSpace(q.Get("dateRange")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("invalid dateRange %q", raw)
		}
		f.DateRangeDays = days
	}

	ids, err := parseSourceIDs(r)
	if err != nil {
		return f, err
	}
	f.SourceIDs = ids
	return f, nil
}
