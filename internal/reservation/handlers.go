package reservation

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

type CreateRequest struct {
	ResourceID int64 `json:"resourceId" validate:"required,gt=0"`
	Payload
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req CreateRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}

	out, err := h.Service.Submit(r.Context(), Requester{ID: p.ID, Name: p.Name}, req.ResourceID, req.Payload)
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
		items, err = h.Service.ListAll(r.Context())
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
