package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clubhq/clubhq/internal/api/dto"
	"github.com/clubhq/clubhq/internal/api/middleware"
	"github.com/clubhq/clubhq/internal/auth"
	"github.com/clubhq/clubhq/internal/database/models"
	"github.com/clubhq/clubhq/internal/metrics"
)

type AccountHandler struct {
	authService *auth.Service
}

func NewAccountHandler(authService *auth.Service) *AccountHandler {
	return &AccountHandler{authService: authService}
}

// Register creates an account through the administrative path. Reachable
// only behind the superadmin policy.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	user, err := h.authService.CreateUser(r.Context(), auth.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.Role(req.Role),
		TenantID:  req.TenantID,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User already exists"})
		case errors.Is(err, auth.ErrInvalidRole):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: map[string]string{"role": "Invalid role"}})
		case errors.Is(err, auth.ErrMissingPassword):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: map[string]string{"password": "Password is required"}})
		case errors.Is(err, auth.ErrOwnerRequiresTenant):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: map[string]string{"tenant": "Owners must be associated with a tenant"}})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	metrics.RegisterCounter.Inc()

	writeJSON(w, http.StatusCreated, dto.ToUserDTO(user))
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	result, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInactiveUser):
			metrics.AuthErrorCounter.WithLabelValues("login_failure").Inc()
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	metrics.LoginCounter.Inc()

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Access:  result.AccessToken,
		Refresh: result.RefreshToken,
		Role:    string(result.Role),
		Tenant:  result.TenantID,
		Email:   result.Email,
	})
}

func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: map[string]string{"refresh": "Refresh token is required"}})
		return
	}

	access, err := h.authService.Refresh(req.Refresh)
	if err != nil {
		metrics.AuthErrorCounter.WithLabelValues("refresh_failure").Inc()
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid or expired refresh token"})
		return
	}

	writeJSON(w, http.StatusOK, dto.RefreshResponse{Access: access})
}

// Me returns the composite profile for the authenticated caller.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		return
	}

	resp := dto.MeResponse{
		Role:    string(user.Role),
		Profile: dto.ToUserDTO(user),
	}
	if user.Tenant != nil {
		resp.Tenant = &dto.TenantSummary{
			ID:   user.Tenant.ID.String(),
			Name: user.Tenant.Name,
			Slug: user.Tenant.Slug,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
