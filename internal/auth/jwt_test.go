package auth_test

import (
	"testing"
	"time"

	"github.com/clubhq/clubhq/internal/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAccessToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour, 24*time.Hour)

	userID := uuid.New()
	tenantID := uuid.New()
	email := "test@example.com"
	role := "OWNER"

	t.Run("generates valid token", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(userID, &tenantID, email, role)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		// Should be parseable
		claims, err := jwtService.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		require.NotNil(t, claims.TenantID)
		assert.Equal(t, tenantID, *claims.TenantID)
		assert.Equal(t, email, claims.Email)
		assert.Equal(t, role, claims.Role)
	})

	t.Run("token contains correct issuer and subject", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(userID, &tenantID, email, role)
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "clubhq", claims.Issuer)
		assert.Equal(t, userID.String(), claims.Subject)
	})

	t.Run("nil tenant stays nil", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(userID, nil, email, "SUPERADMIN")
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Nil(t, claims.TenantID)
	})
}

func TestJWTService_ValidateAccessToken(t *testing.T) {
	userID := uuid.New()
	email := "test@example.com"
	role := "COACH"

	t.Run("rejects expired token", func(t *testing.T) {
		// Create service with very short expiry
		jwtService := auth.NewJWTService("test-secret", 1*time.Millisecond, time.Hour)

		token, err := jwtService.GenerateAccessToken(userID, nil, email, role)
		require.NoError(t, err)

		// Wait for token to expire
		time.Sleep(10 * time.Millisecond)

		_, err = jwtService.ValidateAccessToken(token)
		assert.Equal(t, auth.ErrExpiredToken, err)
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		jwtService := auth.NewJWTService("test-secret", time.Hour, 24*time.Hour)

		token, err := jwtService.GenerateAccessToken(userID, nil, email, role)
		require.NoError(t, err)

		_, err = jwtService.ValidateAccessToken(token + "tampered")
		assert.Equal(t, auth.ErrInvalidToken, err)
	})

	t.Run("rejects token signed with different secret", func(t *testing.T) {
		jwtService1 := auth.NewJWTService("secret-1", time.Hour, 24*time.Hour)
		jwtService2 := auth.NewJWTService("secret-2", time.Hour, 24*time.Hour)

		token, err := jwtService1.GenerateAccessToken(userID, nil, email, role)
		require.NoError(t, err)

		_, err = jwtService2.ValidateAccessToken(token)
		assert.Equal(t, auth.ErrInvalidToken, err)
	})

	t.Run("rejects refresh token as access token", func(t *testing.T) {
		jwtService := auth.NewJWTService("test-secret", time.Hour, 24*time.Hour)

		refresh, err := jwtService.GenerateRefreshToken(userID, nil, email, role)
		require.NoError(t, err)

		_, err = jwtService.ValidateAccessToken(refresh)
		assert.Equal(t, auth.ErrInvalidToken, err)
	})
}

func TestJWTService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour, 24*time.Hour)

	userID := uuid.New()
	tenantID := uuid.New()

	token, err := jwtService.GenerateRefreshToken(userID, &tenantID, "owner@example.com", "OWNER")
	require.NoError(t, err)

	claims, err := jwtService.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, tenantID, *claims.TenantID)

	t.Run("rejects access token as refresh token", func(t *testing.T) {
		access, err := jwtService.GenerateAccessToken(userID, &tenantID, "owner@example.com", "OWNER")
		require.NoError(t, err)

		_, err = jwtService.ValidateRefreshToken(access)
		assert.Equal(t, auth.ErrInvalidToken, err)
	})
}
