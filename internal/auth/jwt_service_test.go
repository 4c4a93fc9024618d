package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.EqualError(t, err, "jwt: secret must be provided")
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{
		Secret:         "super-secret",
		Issuer:         "siteutil",
		AccessTokenTTL: time.Hour,
		Clock:          now,
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{Subject: "ops"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)

	require.Equal(t, "ops", claims.Subject)
	require.Equal(t, RoleAdmin, claims.Role)
	require.Equal(t, "siteutil", claims.Issuer)
	require.True(t, claims.IssuedAt.Time.Equal(current))
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))

	again, err := svc.GenerateAccessToken(AccessTokenInput{Subject: "ops"})
	require.NoError(t, err)
	second, err := svc.ValidateAccessToken(again)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)
	require.NotEqual(t, claims.ID, second.ID)
}

func TestGenerateAccessTokenHonoursTTLOverride(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{Secret: "s", Clock: func() time.Time { return current }})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{Subject: "ci", Role: "viewer", TTL: 5 * time.Minute})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "viewer", claims.Role)
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(5*time.Minute)))

	_, err = svc.GenerateAccessToken(AccessTokenInput{})
	require.EqualError(t, err, "jwt: subject is required")
}

func TestValidateAccessTokenInvalidSignature(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC) }

	issuer, err := NewJWTService(JWTConfig{Secret: "issuer-secret", AccessTokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(AccessTokenInput{Subject: "ops"})
	require.NoError(t, err)

	verifier, err := NewJWTService(JWTConfig{Secret: "other-secret", AccessTokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestValidateAccessTokenWrongIssuer(t *testing.T) {
	a, err := NewJWTService(JWTConfig{Secret: "shared", Issuer: "a"})
	require.NoError(t, err)
	b, err := NewJWTService(JWTConfig{Secret: "shared", Issuer: "b"})
	require.NoError(t, err)

	token, err := a.GenerateAccessToken(AccessTokenInput{Subject: "ops"})
	require.NoError(t, err)

	_, err = b.ValidateAccessToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestValidateAccessTokenExpired(t *testing.T) {
	current := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{Secret: "secret", AccessTokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{Subject: "ops"})
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)

	_, err = svc.ValidateAccessToken(token)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}
