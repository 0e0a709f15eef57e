package api

import (
	"context"
	"slices"
	"strings"
)

const (
	RoleRequester = "requester"
	RoleManager   = "manager"
)

// Principal is the authenticated caller.
type Principal struct {
	ID    string
	Name  string
	Roles []string
}

func (p *Principal) HasRole(role string) bool {
	return p != nil && slices.ContainsFunc(p.Roles, func(r string) bool { return strings.EqualFold(r, role) })
}

func (p *Principal) IsManager() bool { return p.HasRole(RoleManager) }

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) *Principal {
	v := ctx.Value(ctxKeyPrincipal)
	if v == nil {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}
