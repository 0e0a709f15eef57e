// Package approval exposes the approve, reject and timeline routes shared by every
// approvable entity kind.
package approval

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"campusreserve/internal/api"
	"campusreserve/internal/workflow"
)

type Handlers[T workflow.Approvable] struct {
	Engine *workflow.Engine[T]
	// Get loads an entity so the timeline can be shown to its owner. Nil restricts the
	// timeline to managers.
	Get func(ctx context.Context, id int64) (T, error)
	Log *zap.SugaredLogger
}

type DecisionRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

func (h Handlers[T]) Approve(w http.ResponseWriter, r *http.Request) {
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

	var req DecisionRequest
	if err := api.DecodeOptional(r, &req); err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}

	out, err := h.Engine.Approve(r.Context(), id, p.ID, req.Message)
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers[T]) Reject(w http.ResponseWriter, r *http.Request) {
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

	// An absent body is a missing message, not a malformed request.
	var req DecisionRequest
	if err := api.DecodeOptional(r, &req); err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}

	out, err := h.Engine.RejectText(r.Context(), id, p.ID, req.Message)
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers[T]) Events(w http.ResponseWriter, r *http.Request) {
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

	if !p.IsManager() {
		if h.Get == nil {
			api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "the manager role is required")
			return
		}
		entity, err := h.Get(r.Context(), id)
		if err != nil {
			api.WriteDomainError(w, h.Log, err)
			return
		}
		// Other requesters' entities look absent.
		if entity.ApprovalOwner() != p.ID {
			api.WriteDomainError(w, h.Log, workflow.ErrNotFound)
			return
		}
	}

	evs, err := h.Engine.Timeline(r.Context(), id)
	if err != nil {
		api.WriteDomainError(w, h.Log, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": evs})
}
