package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clubhq/clubhq/internal/api/dto"
	"github.com/clubhq/clubhq/internal/database/models"
	"github.com/clubhq/clubhq/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenants_Create(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	t.Run("superadmin creates a tenant", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tenants", dto.CreateTenantRequest{
			Name: "North Side Club",
			Slug: "north-side",
		}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.TenantResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "North Side Club", resp.Name)
		assert.Equal(t, "north-side", resp.Slug)
		assert.True(t, resp.IsActive)
		assert.Equal(t, int64(0), resp.OwnersCount)
	})

	t.Run("slug collision returns conflict", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tenants", dto.CreateTenantRequest{
			Name: "Impostor Club",
			Slug: "north-side",
		}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("invalid slug rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tenants", dto.CreateTenantRequest{
			Name: "Bad Slug Club",
			Slug: "Bad Slug!",
		}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "slug")
	})

	t.Run("owner is forbidden", func(t *testing.T) {
		owner := testutil.CreateTestUser(t, tc.DB, models.RoleOwner, tc.Tenant)
		token := testutil.GenerateTestToken(t, tc.JWTService, owner)

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tenants", dto.CreateTenantRequest{
			Name: "Owner Club",
			Slug: "owner-club",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestTenants_List(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	testutil.CreateTestTenant(t, tc.DB, "Second Club")

	t.Run("superadmin sees all tenants", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tenants", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp []dto.TenantResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Len(t, resp, 2)
	})

	t.Run("owner is forbidden on the listing", func(t *testing.T) {
		owner := testutil.CreateTestUser(t, tc.DB, models.RoleOwner, tc.Tenant)
		token := testutil.GenerateTestToken(t, tc.JWTService, owner)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tenants", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestTenants_Get(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	owner := testutil.CreateTestUser(t, tc.DB, models.RoleOwner, tc.Tenant)
	ownerToken := testutil.GenerateTestToken(t, tc.JWTService, owner)
	other := testutil.CreateTestTenant(t, tc.DB, "Other Club")

	t.Run("superadmin gets detail with owners", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tenants/"+tc.Tenant.ID.String(), nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.TenantDetailResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, tc.Tenant.ID.String(), resp.ID)
		require.Len(t, resp.Owners, 1)
		assert.Equal(t, owner.Email, resp.Owners[0].Email)
		assert.Equal(t, int64(1), resp.OwnersCount)
	})

	t.Run("owner gets their own tenant", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tenants/"+tc.Tenant.ID.String(), nil, ownerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("foreign tenant is indistinguishable from absent", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tenants/"+other.ID.String(), nil, ownerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("client sees nothing", func(t *testing.T) {
		client := testutil.CreateTestUser(t, tc.DB, models.RoleClient, tc.Tenant)
		token := testutil.GenerateTestToken(t, tc.JWTService, client)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tenants/"+tc.Tenant.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/tenants/not-a-uuid", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTenants_UpdateDelete(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	tenant := testutil.CreateTestTenant(t, tc.DB, "Mutable Club")

	t.Run("patch updates provided fields only", func(t *testing.T) {
		name := "Renamed Club"
		req := testutil.AuthenticatedRequest(t, "PATCH", "/api/v1/tenants/"+tenant.ID.String(), dto.UpdateTenantRequest{
			Name: &name,
		}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.TenantResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Renamed Club", resp.Name)
		assert.Equal(t, tenant.Slug, resp.Slug)
	})

	t.Run("delete removes the tenant", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/tenants/"+tenant.ID.String(), nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusNoContent, rr.Code)

		req = testutil.AuthenticatedRequest(t, "GET", "/api/v1/tenants/"+tenant.ID.String(), nil, tc.AdminToken)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete unknown tenant", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/tenants/"+uuid.NewString(), nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTenants_InviteAcceptFlow(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	var invitation dto.InvitationResponse

	t.Run("superadmin invites an owner", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST",
			"/api/v1/tenants/"+tc.Tenant.ID.String()+"/invite-owner",
			dto.InviteOwnerRequest{Email: "New-Owner@Example.com"}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		testutil.ParseJSONResponse(t, rr, &invitation)
		assert.Equal(t, "new-owner@example.com", invitation.Email)
		assert.Equal(t, "PENDING", invitation.Status)
		assert.NotEmpty(t, invitation.Token)
	})

	t.Run("duplicate pending invite rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST",
			"/api/v1/tenants/"+tc.Tenant.ID.String()+"/invite-owner",
			dto.InviteOwnerRequest{Email: "new-owner@example.com"}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "email")
	})

	t.Run("invitee accepts without authentication", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/owners/accept-invite", dto.AcceptInviteRequest{
			Token:     invitation.Token,
			Password:  "StrongPass123!",
			FirstName: "New",
			LastName:  "Owner",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.AcceptInviteResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "new-owner@example.com", resp.Email)
	})

	t.Run("new owner can log in and sees their tenant", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/accounts/login", dto.LoginRequest{
			Email:    "new-owner@example.com",
			Password: "StrongPass123!",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var login dto.LoginResponse
		testutil.ParseJSONResponse(t, rr, &login)
		assert.Equal(t, "OWNER", login.Role)
		require.NotNil(t, login.Tenant)
		assert.Equal(t, tc.Tenant.ID, *login.Tenant)

		req = testutil.AuthenticatedRequest(t, "GET", "/api/v1/accounts/me", nil, login.Access)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var me dto.MeResponse
		testutil.ParseJSONResponse(t, rr, &me)
		require.NotNil(t, me.Tenant)
		assert.Equal(t, tc.Tenant.Name, me.Tenant.Name)
	})

	t.Run("second accept fails with already used", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/owners/accept-invite", dto.AcceptInviteRequest{
			Token:     invitation.Token,
			Password:  "StrongPass123!",
			FirstName: "New",
			LastName:  "Owner",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Invitation has already been used", resp.Details["token"])
	})

	t.Run("expired invitation rejected", func(t *testing.T) {
		stale := testutil.CreateTestInvitation(t, tc.DB, tc.Tenant, "late@example.com")
		require.NoError(t, tc.DB.Model(stale).
			Update("expires_at", time.Now().Add(-time.Hour)).Error)

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/owners/accept-invite", dto.AcceptInviteRequest{
			Token:     stale.Token,
			Password:  "StrongPass123!",
			FirstName: "Too",
			LastName:  "Late",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Invitation has expired", resp.Details["token"])

		var stored models.OwnerInvitation
		require.NoError(t, tc.DB.First(&stored, "id = ?", stale.ID).Error)
		assert.Equal(t, models.InviteExpired, stored.Status)
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/owners/accept-invite", dto.AcceptInviteRequest{
			Token:     "bogus-token",
			Password:  "StrongPass123!",
			FirstName: "No",
			LastName:  "One",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Invalid invitation token", resp.Details["token"])
	})

	t.Run("invite on unknown tenant", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST",
			"/api/v1/tenants/"+uuid.NewString()+"/invite-owner",
			dto.InviteOwnerRequest{Email: "ghost@example.com"}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTenants_AssignOwner(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(t, tc)

	tenant := testutil.CreateTestTenant(t, tc.DB, "Assign Club")
	owner := testutil.CreateTestUser(t, tc.DB, models.RoleOwner, tc.Tenant)

	t.Run("reassigns an existing owner", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST",
			"/api/v1/tenants/"+tenant.ID.String()+"/assign-owner",
			dto.AssignOwnerRequest{UserID: owner.ID}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusNoContent, rr.Code)

		var stored models.User
		require.NoError(t, tc.DB.First(&stored, "id = ?", owner.ID).Error)
		require.NotNil(t, stored.TenantID)
		assert.Equal(t, tenant.ID, *stored.TenantID)
	})

	t.Run("non-owner assignee rejected", func(t *testing.T) {
		coach := testutil.CreateTestUser(t, tc.DB, models.RoleCoach, nil)

		req := testutil.AuthenticatedRequest(t, "POST",
			"/api/v1/tenants/"+tenant.ID.String()+"/assign-owner",
			dto.AssignOwnerRequest{UserID: coach.ID}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "user_id")
	})

	t.Run("unknown assignee rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST",
			"/api/v1/tenants/"+tenant.ID.String()+"/assign-owner",
			dto.AssignOwnerRequest{UserID: uuid.New()}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing user id rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST",
			"/api/v1/tenants/"+tenant.ID.String()+"/assign-owner",
			dto.AssignOwnerRequest{}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
