// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	service, err := NewTokenService(
		"access-secret-for-tests",
		"refresh-secret-for-tests",
		"theneighbourhood.gov",
		30*time.Minute,
		168*time.Hour,
	)
	require.NoError(t, err)
	return service
}

func TestNewTokenServiceRejectsBadSecrets(t *testing.T) {
	_, err := NewTokenService("", "refresh", "iss", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService("same", "same", "iss", time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "amara", "amara@gov.example", "Amara", "Osei")
	require.NoError(t, err)

	claims, err := service.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "amara", claims.Username)
	assert.Equal(t, "amara@gov.example", claims.Email)
	assert.Equal(t, "Amara", claims.FirstName)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateRefreshToken("amara")
	require.NoError(t, err)

	username, err := service.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "amara", username)
}

func TestTokenClassesDoNotCrossVerify(t *testing.T) {
	service := newTestTokenService(t)

	accessToken, err := service.GenerateAccessToken("user-1", "amara", "amara@gov.example", "", "")
	require.NoError(t, err)
	refreshToken, err := service.GenerateRefreshToken("amara")
	require.NoError(t, err)

	// An access token must not verify as a refresh token, and vice versa.
	_, err = service.VerifyRefreshToken(accessToken)
	assert.Error(t, err)
	_, err = service.VerifyAccessToken(refreshToken)
	assert.Error(t, err)
}

func TestVerifyAccessTokenRejectsTampering(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "amara", "amara@gov.example", "", "")
	require.NoError(t, err)

	_, err = service.VerifyAccessToken(token + "x")
	assert.Error(t, err)
}

func TestHashTokenIsDeterministic(t *testing.T) {
	first := HashToken("some-refresh-token")
	second := HashToken("some-refresh-token")
	other := HashToken("another-token")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.NotContains(t, first, "some-refresh-token")
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}
