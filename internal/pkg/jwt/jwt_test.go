package jwt

import (
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("test-secret", "15m")
	require.NoError(t, err)
	return svc
}

func TestGenerateAccessToken(t *testing.T) {
	svc := newTestService(t)

	token, exp, err := svc.GenerateAccessToken("E1", RoleHR)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, exp, int64(0))

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := parsed.AsMap(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "E1", claims["employee_id"])
	assert.Equal(t, "hr", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])

	_, _, err = svc.GenerateAccessToken("E1", Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSSEToken(t *testing.T) {
	svc := newTestService(t)

	token, expiresIn, err := svc.GenerateSSEToken("E7")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	id, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "E7", id)

	access, _, err := svc.GenerateAccessToken("E7", RoleEmployee)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err, "access tokens are not accepted on the stream")
}

func TestNewJWTServiceRejectsBadDuration(t *testing.T) {
	_, err := NewJWTService("s", "forever")
	assert.Error(t, err)
}

func TestRoleIsReviewer(t *testing.T) {
	assert.True(t, RoleAdmin.IsReviewer())
	assert.True(t, RoleHR.IsReviewer())
	assert.False(t, RoleEmployee.IsReviewer())
}
