package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestVerify_RoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tok, err := Issue("s3cret", "campus-login", "reservations", "u-17", "Ana Pérez", []string{"Manager"}, now, 10*time.Minute)
	require.NoError(t, err)

	v := Verifier{Secret: "s3cret", Issuer: "campus-login", Audience: "reservations"}
	s, err := v.Verify(tok, now)
	require.NoError(t, err)
	require.Equal(t, "u-17", s.Subject)
	require.Equal(t, "Ana Pérez", s.Name)
	require.True(t, s.HasRole("manager"))
	require.False(t, s.HasRole("admin"))
}

func TestVerify_Rejects(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tok, err := Issue("s3cret", "campus-login", "reservations", "u-17", "", nil, now, time.Minute)
	require.NoError(t, err)

	cases := map[string]struct {
		v   Verifier
		tok string
		at  time.Time
	}{
		"wrong secret":   {Verifier{Secret: "other"}, tok, now},
		"expired":        {Verifier{Secret: "s3cret"}, tok, now.Add(2 * time.Minute)},
		"issuer":         {Verifier{Secret: "s3cret", Issuer: "someone-else"}, tok, now},
		"audience":       {Verifier{Secret: "s3cret", Audience: "billing"}, tok, now},
		"empty":          {Verifier{Secret: "s3cret"}, "", now},
		"no secret":      {Verifier{}, tok, now},
		"garbage":        {Verifier{Secret: "s3cret"}, "not.a.jwt", now},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.v.Verify(tc.tok, tc.at)
			require.Error(t, err)
		})
	}
}

func TestVerify_RequiresSubjectAndHS256(t *testing.T) {
	now := time.Unix(1700000000, 0)
	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))},
	})
	s, err := noSub.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = Verifier{Secret: "s3cret"}.Verify(s, now)
	require.Error(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))},
	})
	s, err = hs512.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = Verifier{Secret: "s3cret"}.Verify(s, now)
	require.Error(t, err)
}
