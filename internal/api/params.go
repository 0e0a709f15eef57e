package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"campusreserve/internal/workflow"
)

// IDParam parses the {id} route parameter.
func IDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", workflow.ErrInvalidInput, raw)
	}
	return id, nil
}

// MineOnly reports whether a list should be restricted to the caller's own entities.
// Non-managers always get their own.
func MineOnly(r *http.Request, p *Principal) bool {
	if !p.IsManager() {
		return true
	}
	mine, _ := strconv.ParseBool(r.URL.Query().Get("mine"))
	return mine
}
