package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"campusreserve/pkg/token"
)

// Authenticate validates the campus session token.
//
// Expected header:
// - Authorization: Bearer <JWT>
func Authenticate(v token.Verifier, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token")
				return
			}

			s, err := v.Verify(strings.TrimSpace(authz[7:]), time.Now())
			if err != nil {
				if log != nil && !errors.Is(err, token.ErrMissingToken) {
					log.Debugw("session token rejected", "error", err)
				}
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
				return
			}

			p := &Principal{ID: s.Subject, Name: s.Name, Roles: s.Roles}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
				return
			}
			if !p.HasRole(role) {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "the "+role+" role is required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
