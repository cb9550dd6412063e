package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wahaj323/quizengine/internal/config"
)

func testAuth(now time.Time) *Auth {
	a := NewAuth(config.AuthConfig{Secret: "s3cret", Issuer: "quizengine", TTL: time.Hour})
	a.now = func() time.Time { return now }
	return a
}

func TestAuth_RoundTrip(t *testing.T) {
	now := time.Now()
	a := testAuth(now)

	tok, err := a.Issue("ana", RoleTeacher)
	require.NoError(t, err)

	claims, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Subject)
	assert.Equal(t, RoleTeacher, claims.Role)
	assert.Equal(t, "quizengine", claims.Issuer)
}

func TestAuth_Rejects(t *testing.T) {
	now := time.Now()
	a := testAuth(now)
	valid, err := a.Issue("ana", RoleLearner)
	require.NoError(t, err)

	expired := testAuth(now.Add(-2 * time.Hour))
	old, err := expired.Issue("ana", RoleLearner)
	require.NoError(t, err)

	other := NewAuth(config.AuthConfig{Secret: "different", Issuer: "quizengine", TTL: time.Hour})
	forged, err := other.Issue("ana", RoleTeacher)
	require.NoError(t, err)

	foreign := NewAuth(config.AuthConfig{Secret: "s3cret", Issuer: "elsewhere", TTL: time.Hour})
	wrongIssuer, err := foreign.Issue("ana", RoleLearner)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role:             RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ana", Issuer: "quizengine", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ana", Issuer: "quizengine", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             RoleLearner,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ana", Issuer: "quizengine"},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      old,
		"wrong secret": forged,
		"wrong issuer": wrongIssuer,
		"alg none":     unsigned,
		"unknown role": badRole,
		"no expiry":    noExpiry,
		"garbage":      "abc.def.ghi",
		"truncated":    valid[:len(valid)-4],
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.Parse(tok)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestAuth_IssueChecksPrincipal(t *testing.T) {
	a := testAuth(time.Now())
	_, err := a.Issue("", RoleLearner)
	assert.Error(t, err)
	_, err = a.Issue("ana", "admin")
	assert.Error(t, err)
}
