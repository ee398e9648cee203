package jwt

import (
	"testing"
	"time"

	"socialnet/backend/internal/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{JWTSecret: secret, ActivationTTL: time.Hour}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestSessionTokenRoundTrip(t *testing.T) {
	withSecret(t, "s3cret")

	tok, err := GenerateToken(42)
	require.NoError(t, err)

	id, err := ParseToken(tok, PurposeSession)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = ParseToken(tok, PurposeActivate)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActivationToken(t *testing.T) {
	withSecret(t, "s3cret")

	tok, err := GenerateActivationToken(7)
	require.NoError(t, err)

	id, err := ParseToken(tok, PurposeActivate)
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)
}

func TestParseTokenRejectsForeignAndExpired(t *testing.T) {
	withSecret(t, "s3cret")

	foreign := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub": 1, "pur": PurposeSession, "exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString([]byte("other"))
	require.NoError(t, err)
	_, err = ParseToken(signed, PurposeSession)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := generate(1, PurposeSession, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, PurposeSession)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("garbage", PurposeSession)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLinkTokensCarryTheirClaims(t *testing.T) {
	withSecret(t, "s3cret")

	reset, err := GenerateResetToken(9, "abc123")
	require.NoError(t, err)
	claims, err := ParseClaims(reset, PurposeReset)
	require.NoError(t, err)
	assert.EqualValues(t, 9, claims.UserID)
	assert.Equal(t, "abc123", claims.Stamp)
	assert.Empty(t, claims.Email)

	change, err := GenerateEmailChangeToken(9, "new@example.com")
	require.NoError(t, err)
	claims, err = ParseClaims(change, PurposeEmail)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", claims.Email)

	// Neither is accepted for anything else.
	for _, purpose := range []string{PurposeSession, PurposeActivate} {
		_, err = ParseToken(reset, purpose)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = ParseToken(change, purpose)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
	_, err = ParseClaims(reset, PurposeEmail)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
