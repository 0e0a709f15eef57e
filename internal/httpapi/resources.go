package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"campusreserve/internal/api"
	"campusreserve/internal/catalog"
	"campusreserve/internal/workflow"
)

type resourceHandlers struct {
	Catalog catalog.Catalog
	Log     *zap.SugaredLogger
}

// List serves active resources. Managers may pass ?all=true to include inactive ones.
func (h resourceHandlers) List(w http.ResponseWriter, r *http.Request) {
	kind, err := catalog.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		api.WriteDomainError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrInvalidInput, err))
		return
	}

	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	if all && !api.PrincipalFromContext(r.Context()).IsManager() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "the manager role is required")
		return
	}

	var items []catalog.Resource
	if all {
		items, err = h.Catalog.FetchAll(r.Context(), kind)
	} else {
		items, err = h.Catalog.ListActive(r.Context(), kind)
	}
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h resourceHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r)
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	var res catalog.Resource
	if api.PrincipalFromContext(r.Context()).IsManager() {
		res, err = h.Catalog.Get(r.Context(), id)
	} else {
		res, err = catalog.Bookable(r.Context(), h.Catalog, id)
	}
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}
