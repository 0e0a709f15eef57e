package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusreserve/internal/catalog"
	"campusreserve/internal/validation"
	"campusreserve/internal/workflow"
	"campusreserve/pkg/token"
)

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&validation.RuleViolation{Rule: validation.RuleWeekday, Message: "weekends are closed"}, http.StatusUnprocessableEntity, "RULE_VIOLATION"},
		{fmt.Errorf("lookup: %w", catalog.ErrResourceNotFound), http.StatusNotFound, "INVALID_SELECTION"},
		{workflow.ErrNotFound, http.StatusNotFound, "INVALID_SELECTION"},
		{fmt.Errorf("%w: from Approved", workflow.ErrInvalidTransition), http.StatusConflict, "ALREADY_RESOLVED"},
		{workflow.ErrMissingRejectionMessage, http.StatusBadRequest, "REJECTION_MESSAGE_REQUIRED"},
		{workflow.ErrConflict, http.StatusConflict, "SLOT_TAKEN"},
		{fmt.Errorf("%w: bad id", workflow.ErrInvalidInput), http.StatusBadRequest, "VALIDATION_FAILED"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
		{errors.New("connection refused"), http.StatusServiceUnavailable, "RETRYABLE"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, nil, tc.err)
			require.Equal(t, tc.status, rec.Code)

			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			require.Equal(t, tc.code, env.Error.Code)
			require.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestWriteDomainError_RuleViolationIsVerbatim(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDomainError(rec, nil, &validation.RuleViolation{Rule: validation.RuleCapacity, Message: "11 attendees exceed the capacity of 10"})

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "CAPACITY_EXCEEDED", env.Error.Rule)
	require.Equal(t, "11 attendees exceed the capacity of 10", env.Error.Message)
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	v := token.Verifier{Secret: "s3cret"}
	var seen *Principal
	h := Authenticate(v, nil)(RequireRole(RoleManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	call := func(authz string) int {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusUnauthorized, call(""))
	require.Equal(t, http.StatusUnauthorized, call("Basic abc"))
	require.Equal(t, http.StatusUnauthorized, call("Bearer not-a-jwt"))

	requester, err := token.Issue("s3cret", "", "", "u-1", "Ann", []string{"requester"}, time.Now(), time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, call("Bearer "+requester))

	manager, err := token.Issue("s3cret", "", "", "u-2", "Mia", []string{"Manager"}, time.Now(), time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, call("bearer "+manager))
	require.Equal(t, "u-2", seen.ID)
	require.Equal(t, "Mia", seen.Name)
	require.True(t, seen.IsManager())
}

func TestDecode(t *testing.T) {
	type body struct {
		Name  string `json:"name" validate:"required"`
		Count int    `json:"count" validate:"gte=0"`
	}

	var b body
	err := Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":-1}`)), &b)
	require.ErrorIs(t, err, workflow.ErrInvalidInput)
	require.Contains(t, err.Error(), "name is required")
	require.Contains(t, err.Error(), "count must satisfy gte=0")

	err = Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``)), &b)
	require.ErrorIs(t, err, workflow.ErrInvalidInput)

	require.NoError(t, DecodeOptional(httptest.NewRequest(http.MethodPost, "/", nil), &b))
	err = DecodeOptional(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`)), &b)
	require.ErrorIs(t, err, workflow.ErrInvalidInput)
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware(CORSOptions{AllowedOrigins: []string{"https://dash.campus.edu"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/resources", nil)
	req.Header.Set("Origin", "https://dash.campus.edu")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://dash.campus.edu", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/v1/resources", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
