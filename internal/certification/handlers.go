package certification

import (
	"net/http"

	"go.uber.org/zap"

	"campusreserve/internal/api"
	"campusreserve/internal/workflow"
)

type Handlers struct {
	Service *Service
	Log     *zap.SugaredLogger
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var in Input
	if err := api.Decode(r, &in); err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}

	out, err := h.Service.Create(r.Context(), workflow.Requester{ID: p.ID, Name: p.Name}, in)
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, out)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var (
		items []Request
		err   error
	)
	if api.MineOnly(r, p) {
		items, err = h.Service.ListMine(r.Context(), p.ID)
	} else {
		items, err = h.Service.List(r.Context())
	}
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	id, err := api.IDParam(r)
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}

	out, err := h.Service.Get(r.Context(), id)
	if err == nil && !p.IsManager() && out.RequesterID != p.ID {
		err = workflow.ErrNotFound
	}
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, out)
}
