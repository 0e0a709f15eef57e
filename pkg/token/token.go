// Package token issues and verifies the HS256 session tokens minted by the campus login service.
package token

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity the core needs: who is calling and which roles they hold.
type Claims struct {
	jwt.RegisteredClaims

	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Session is a verified token.
type Session struct {
	Subject   string
	Name      string
	Roles     []string
	ExpiresAt time.Time
}

// HasRole reports whether the session carries role (case-insensitive).
func (s Session) HasRole(role string) bool {
	return slices.ContainsFunc(s.Roles, func(r string) bool { return strings.EqualFold(r, role) })
}

var (
	ErrMissingToken  = errors.New("missing token")
	ErrMissingSecret = errors.New("missing signing secret")
)

// Verifier checks tokens against a shared secret and optional issuer/audience.
type Verifier struct {
	Secret   string
	Issuer   string
	Audience string
}

// Verify parses tokenString and returns the session it describes.
func (v Verifier) Verify(tokenString string, now time.Time) (*Session, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	if v.Secret == "" {
		return nil, ErrMissingSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}

	claims := &Claims{}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(v.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return nil, fmt.Errorf("missing subject in token")
	}

	return &Session{
		Subject:   sub,
		Name:      strings.TrimSpace(claims.Name),
		Roles:     claims.Roles,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Issue signs a token for subject. The login service owns issuance in production;
// this exists for dev tooling and tests.
func Issue(secret, issuer, audience, subject, name string, roles []string, now time.Time, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  name,
		Roles: roles,
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
