package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"campusreserve/internal/catalog"
	"campusreserve/internal/validation"
	"campusreserve/internal/workflow"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, APIError{Code: code, Message: message})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDomainError maps errors returned by the booking and workflow core onto the error
// envelope. Unknown errors are store failures: logged, and reported as retryable.
func WriteDomainError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	var violation *validation.RuleViolation
	switch {
	case errors.As(err, &violation):
		writeEnvelope(w, http.StatusUnprocessableEntity, APIError{
			Code:    "RULE_VIOLATION",
			Message: violation.Message,
			Rule:    string(violation.Rule),
		})
	case errors.Is(err, catalog.ErrResourceNotFound), errors.Is(err, workflow.ErrNotFound):
		WriteError(w, http.StatusNotFound, "INVALID_SELECTION", "invalid selection")
	case errors.Is(err, workflow.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, "ALREADY_RESOLVED", "this request has already been resolved")
	case errors.Is(err, workflow.ErrMissingRejectionMessage):
		WriteError(w, http.StatusBadRequest, "REJECTION_MESSAGE_REQUIRED", "a rejection message is required")
	case errors.Is(err, workflow.ErrConflict):
		WriteError(w, http.StatusConflict, "SLOT_TAKEN", "the resource is already reserved for that time")
	case errors.Is(err, workflow.ErrInvalidInput), errors.Is(err, validation.ErrMalformedSlot):
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, "TIMEOUT", "the request timed out, please retry")
	default:
		if log != nil {
			log.Errorw("request failed", "error", err)
		}
		WriteError(w, http.StatusServiceUnavailable, "RETRYABLE", "temporary failure, please retry")
	}
}

func writeEnvelope(w http.ResponseWriter, status int, e APIError) {
	WriteJSON(w, status, ErrorEnvelope{Error: e})
}
