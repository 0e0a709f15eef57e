package availability

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"campusreserve/internal/api"
	"campusreserve/internal/catalog"
	"campusreserve/internal/validation"
	"campusreserve/internal/workflow"
)

type Handlers struct {
	View     *View
	Catalog  catalog.Catalog
	Location *time.Location
	Log      *zap.SugaredLogger
}

// Get serves the calendar of one active resource, optionally bounded by ?from= and ?to=
// (RFC 3339 instants or dates in the booking location; a date `to` includes that day).
func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r)
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	if _, err := catalog.Bookable(r.Context(), h.Catalog, id); err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}

	from, err := h.parseBound(r.URL.Query().Get("from"), false)
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	to, err := h.parseBound(r.URL.Query().Get("to"), true)
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		api.WriteDomainError(w, h.Log, fmt.Errorf("%w: from must be before to", workflow.ErrInvalidInput))
		return
	}

	windows := []Window{}
	for win, err := range h.View.Between(r.Context(), id, from, to) {
		if err != nil {
			api.WriteDomainError(w, h.Log, err)
			return
		}
		windows = append(windows, win)
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"resourceId": id, "items": windows})
}

func (h Handlers) parseBound(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(validation.DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", workflow.ErrInvalidInput, raw)
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1)
	}
	return d, nil
}
