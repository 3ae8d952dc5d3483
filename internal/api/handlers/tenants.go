package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clubhq/clubhq/internal/api/dto"
	"github.com/clubhq/clubhq/internal/api/middleware"
	"github.com/clubhq/clubhq/internal/metrics"
	"github.com/clubhq/clubhq/internal/tenants"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type TenantHandler struct {
	service *tenants.Service
}

func NewTenantHandler(service *tenants.Service) *TenantHandler {
	return &TenantHandler{service: service}
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())
	tenantID := middleware.GetTenantID(r.Context())

	listings, err := h.service.List(r.Context(), role, tenantID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list tenants"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTenantListResponse(listings))
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	tenant, err := h.service.Create(r.Context(), tenants.CreateTenantInput{
		Name:           req.Name,
		Slug:           req.Slug,
		LogoURL:        req.LogoURL,
		ThemePrimary:   req.ThemePrimary,
		ThemeSecondary: req.ThemeSecondary,
		Address:        req.Address,
		ContactEmail:   req.ContactEmail,
	})

	if err != nil {
		if errors.Is(err, tenants.ErrSlugTaken) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Slug is already in use"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create tenant"})
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToTenantResponse(tenant, 0))
}

// Get returns a tenant with its owners embedded. Any authenticated caller
// may hit this endpoint; visibility is filtered per role, with out-of-scope
// tenants indistinguishable from absent ones.
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTenantID(w, r)
	if !ok {
		return
	}

	role := middleware.GetUserRole(r.Context())
	viewerTenant := middleware.GetTenantID(r.Context())

	tenant, err := h.service.GetForViewer(r.Context(), id, role, viewerTenant)
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
		return
	}

	owners, err := h.service.Owners(r.Context(), tenant.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load owners"})
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTenantDetailResponse(tenant, owners))
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTenantID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	tenant, err := h.service.Update(r.Context(), id, tenants.UpdateTenantInput{
		Name:           req.Name,
		Slug:           req.Slug,
		LogoURL:        req.LogoURL,
		ThemePrimary:   req.ThemePrimary,
		ThemeSecondary: req.ThemeSecondary,
		Address:        req.Address,
		ContactEmail:   req.ContactEmail,
		IsActive:       req.IsActive,
	})

	if err != nil {
		switch {
		case errors.Is(err, tenants.ErrTenantNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
		case errors.Is(err, tenants.ErrSlugTaken):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Slug is already in use"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update tenant"})
		}
		return
	}

	count, err := h.service.OwnersCount(r.Context(), tenant.ID)
	if err != nil {
		count = 0
	}

	writeJSON(w, http.StatusOK, dto.ToTenantResponse(tenant, count))
}

func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTenantID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, tenants.ErrTenantNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete tenant"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TenantHandler) InviteOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTenantID(w, r)
	if !ok {
		return
	}

	var req dto.InviteOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	invitation, err := h.service.InviteOwner(r.Context(), id, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, tenants.ErrTenantNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
		case errors.Is(err, tenants.ErrDuplicatePendingInvite):
			metrics.InvitationCounter.WithLabelValues("duplicate").Inc()
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"email": "An invitation is already pending for this email"},
			})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create invitation"})
		}
		return
	}

	metrics.InvitationCounter.WithLabelValues("created").Inc()

	writeJSON(w, http.StatusCreated, dto.ToInvitationResponse(invitation))
}

func (h *TenantHandler) AssignOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTenantID(w, r)
	if !ok {
		return
	}

	var req dto.AssignOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	_, err := h.service.AssignOwner(r.Context(), id, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, tenants.ErrTenantNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tenant not found"})
		case errors.Is(err, tenants.ErrAssigneeNotFound):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"user_id": "User not found"},
			})
		case errors.Is(err, tenants.ErrAssigneeNotOwner):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"user_id": "User must have OWNER role"},
			})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to assign owner"})
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AcceptInvite is the public endpoint converting an invitation token into an
// OWNER account.
func (h *TenantHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req dto.AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	user, err := h.service.AcceptInvite(r.Context(), tenants.AcceptInviteInput{
		Token:     req.Token,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})

	if err != nil {
		switch {
		case errors.Is(err, tenants.ErrInvalidInviteToken):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"token": "Invalid invitation token"},
			})
		case errors.Is(err, tenants.ErrInviteAlreadyUsed):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"token": "Invitation has already been used"},
			})
		case errors.Is(err, tenants.ErrInviteExpired):
			metrics.InvitationCounter.WithLabelValues("expired").Inc()
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"token": "Invitation has expired"},
			})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to accept invitation"})
		}
		return
	}

	metrics.InvitationCounter.WithLabelValues("accepted").Inc()

	writeJSON(w, http.StatusCreated, dto.AcceptInviteResponse{
		Message: "Invitation accepted",
		Email:   user.Email,
	})
}

func parseTenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid tenant id"})
		return uuid.Nil, false
	}
	return id, true
}
