package dto

import (
	"github.com/clubhq/clubhq/internal/api/validation"
	"github.com/clubhq/clubhq/internal/database/models"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role,omitempty"`
	TenantID  *uuid.UUID `json:"tenant,omitempty"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if r.Role != "" && !models.ValidRole(models.Role(r.Role)) {
		errors["role"] = "Invalid role"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type LoginResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	Role    string     `json:"role"`
	Tenant  *uuid.UUID `json:"tenant"`
	Email   string     `json:"email"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

type UserDTO struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role"`
	TenantID  *uuid.UUID `json:"tenant"`
}

func ToUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		TenantID:  u.TenantID,
	}
}

// MeResponse is the composite profile view: role, tenant summary (nil for
// unaffiliated users) and the profile fields.
type MeResponse struct {
	Role    string         `json:"role"`
	Tenant  *TenantSummary `json:"tenant"`
	Profile UserDTO        `json:"profile"`
}

type TenantSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
