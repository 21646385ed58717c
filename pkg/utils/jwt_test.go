package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_GenerateAndParse(t *testing.T) {
	m := NewJWTManager("test-secret", "scholar-sync")

	token, err := m.GenerateToken("u1", "uni-1", "faculty", "access", time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "uni-1", claims.UniversityID)
	assert.Equal(t, "faculty", claims.Role)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "scholar-sync", claims.Issuer)
}

func TestJWT_TokenPair(t *testing.T) {
	m := NewJWTManager("test-secret", "scholar-sync")

	pair, err := m.GenerateTokenPair("u1", "", "student", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	access, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", access.Type)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
}

func TestJWT_WrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", "scholar-sync")
	token, err := m.GenerateToken("u1", "", "student", "access", time.Hour)
	require.NoError(t, err)

	other := NewJWTManager("secret-b", "scholar-sync")
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", "scholar-sync")
	token, err := m.GenerateToken("u1", "", "student", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWT_Garbage(t *testing.T) {
	m := NewJWTManager("test-secret", "scholar-sync")
	_, err := m.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
