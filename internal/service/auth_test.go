package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(nil, "test-secret", time.Hour, newTestLogger())

	userID := uuid.New().String()
	token, err := svc.GenerateJWTToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService(nil, "secret-one", time.Hour, newTestLogger())
	verifier := NewAuthService(nil, "secret-two", time.Hour, newTestLogger())

	token, err := issuer.GenerateJWTToken(uuid.New().String())
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(nil, "test-secret", -time.Minute, newTestLogger())

	token, err := svc.GenerateJWTToken(uuid.New().String())
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(nil, "test-secret", time.Hour, newTestLogger())

	_, err := svc.ParseToken("not-a-token")
	assert.Error(t, err)
}
