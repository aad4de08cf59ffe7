package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aw-admin-api/internal/models"
	"github.com/noah-isme/aw-admin-api/pkg/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, 12*time.Hour)
	issuedAt := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.SetClock(fixedClock(issuedAt))

	token, expiresAt, err := svc.Issue(42, "a@example.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(12*time.Hour), expiresAt)

	principal, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal.UserID)
	assert.Equal(t, "a@example.com", principal.Email)
	assert.Equal(t, "admin", principal.Role)
}

func TestTokenServiceExpired(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	issuedAt := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.SetClock(fixedClock(issuedAt))
	token, _, err := svc.Issue(1, "", "")
	require.NoError(t, err)

	svc.SetClock(fixedClock(issuedAt.Add(2 * time.Hour)))
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenServiceRejectsTampering(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	token, _, err := svc.Issue(1, "", "")
	require.NoError(t, err)

	other := NewTokenService("another-secret-another-secret-xx", time.Hour)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Validate(token + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenServiceRejectsOtherAlgorithms(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	claims := &models.TokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Validate(hs512)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Validate(none)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenServiceRequiresExpiry(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenServiceRejectsBadSubject(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	for _, sub := range []string{"", "abc", "0", "-4", "1.5"} {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sub,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrTokenPayload, sub)
	}
}

func TestResolveSecret(t *testing.T) {
	cfg := &config.Config{Env: config.EnvDevelopment}
	secret, err := ResolveSecret(cfg, nil)
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	cfg.JWT.Secret = testSecret
	secret, err = ResolveSecret(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, testSecret, secret)

	_, err = ResolveSecret(&config.Config{Env: config.EnvProduction}, nil)
	assert.Error(t, err)
}
