package handlers_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clubhq/clubhq/internal/api"
	"github.com/clubhq/clubhq/internal/api/dto"
	"github.com/clubhq/clubhq/internal/auth"
	"github.com/clubhq/clubhq/internal/database/models"
	"github.com/clubhq/clubhq/internal/tenants"
	"github.com/clubhq/clubhq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires a full router over an in-memory database, without
// Redis or a task queue.
func newTestRouter(t *testing.T, tc *testutil.TestSetup) http.Handler {
	t.Helper()

	logger := slog.Default()
	authService := auth.NewService(tc.DB, tc.JWTService)
	tenantService := tenants.NewService(tc.DB, nil, logger, 0)

	return api.NewRouter(api.RouterConfig{
		DB:            tc.DB,
		Logger:        logger,
		JWTService:    tc.JWTService,
		AuthService:   authService,
		TenantService: tenantService,
	})
}

func TestAccounts_Register(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	t.Run("superadmin can register a coach", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/accounts/register", dto.RegisterRequest{
			Email:     "coach@example.com",
			Password:  "StrongPass123!",
			FirstName: "Casey",
			LastName:  "Coach",
			Role:      "COACH",
		}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var user dto.UserDTO
		testutil.ParseJSONResponse(t, rr, &user)
		assert.Equal(t, "coach@example.com", user.Email)
		assert.Equal(t, "COACH", user.Role)
	})

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/accounts/register", dto.RegisterRequest{
			Email:    "coach@example.com",
			Password: "StrongPass123!",
		}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/accounts/register", dto.RegisterRequest{
			Email:    "weak@example.com",
			Password: "short",
		}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "password")
	})

	t.Run("non-superadmin is forbidden", func(t *testing.T) {
		owner := testutil.CreateTestUser(t, tc.DB, models.RoleOwner, tc.Tenant)
		token := testutil.GenerateTestToken(t, tc.JWTService, owner)

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/accounts/register", dto.RegisterRequest{
			Email:    "sneaky@example.com",
			Password: "StrongPass123!",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/accounts/register", dto.RegisterRequest{
			Email:    "anon@example.com",
			Password: "StrongPass123!",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAccounts_Login(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	authService := auth.NewService(tc.DB, tc.JWTService)
	_, err := authService.CreateUser(context.Background(), auth.CreateUserInput{
		Email:    "owner@example.com",
		Password: "StrongPass123!",
		Role:     models.RoleOwner,
		TenantID: &tc.Tenant.ID,
	})
	require.NoError(t, err)

	t.Run("returns token pair with role and tenant", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/accounts/login", dto.LoginRequest{
			Email:    "Owner@Example.COM",
			Password: "StrongPass123!",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.LoginResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Access)
		assert.NotEmpty(t, resp.Refresh)
		assert.Equal(t, "OWNER", resp.Role)
		require.NotNil(t, resp.Tenant)
		assert.Equal(t, tc.Tenant.ID, *resp.Tenant)
		assert.Equal(t, "owner@example.com", resp.Email)
	})

	t.Run("wrong password yields 401", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/accounts/login", dto.LoginRequest{
			Email:    "owner@example.com",
			Password: "WrongPass123!",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("inactive user yields the same 401", func(t *testing.T) {
		require.NoError(t, tc.DB.Model(&models.User{}).
			Where("email = ?", "owner@example.com").
			Update("is_active", false).Error)
		defer tc.DB.Model(&models.User{}).
			Where("email = ?", "owner@example.com").
			Update("is_active", true)

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/accounts/login", dto.LoginRequest{
			Email:    "owner@example.com",
			Password: "StrongPass123!",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Invalid credentials", resp.Error)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/accounts/login", dto.LoginRequest{})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAccounts_Refresh(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	authService := auth.NewService(tc.DB, tc.JWTService)
	_, err := authService.CreateUser(context.Background(), auth.CreateUserInput{
		Email:    "refresh@example.com",
		Password: "StrongPass123!",
	})
	require.NoError(t, err)

	result, err := authService.Login(context.Background(), auth.LoginInput{
		Email:    "refresh@example.com",
		Password: "StrongPass123!",
	})
	require.NoError(t, err)

	t.Run("refresh token mints a new access token", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/accounts/refresh", dto.RefreshRequest{
			Refresh: result.RefreshToken,
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.RefreshResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Access)

		claims, err := tc.JWTService.ValidateAccessToken(resp.Access)
		require.NoError(t, err)
		assert.Equal(t, "refresh@example.com", claims.Email)
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/accounts/refresh", dto.RefreshRequest{
			Refresh: result.AccessToken,
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("empty token rejected", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/accounts/refresh", dto.RefreshRequest{})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAccounts_Me(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	t.Run("returns role, tenant and profile", func(t *testing.T) {
		owner := testutil.CreateTestUser(t, tc.DB, models.RoleOwner, tc.Tenant)
		token := testutil.GenerateTestToken(t, tc.JWTService, owner)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/accounts/me", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.MeResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "OWNER", resp.Role)
		require.NotNil(t, resp.Tenant)
		assert.Equal(t, tc.Tenant.ID.String(), resp.Tenant.ID)
		assert.Equal(t, tc.Tenant.Slug, resp.Tenant.Slug)
		assert.Equal(t, owner.Email, resp.Profile.Email)
	})

	t.Run("tenant is null for unaffiliated users", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/accounts/me", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.MeResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "SUPERADMIN", resp.Role)
		assert.Nil(t, resp.Tenant)
	})

	t.Run("any authenticated role may call", func(t *testing.T) {
		client := testutil.CreateTestUser(t, tc.DB, models.RoleClient, nil)
		token := testutil.GenerateTestToken(t, tc.JWTService, client)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/accounts/me", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/accounts/me", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
