package dto

import (
	"time"

	"github.com/clubhq/clubhq/internal/api/validation"
	"github.com/clubhq/clubhq/internal/database/models"
	"github.com/clubhq/clubhq/internal/tenants"
	"github.com/google/uuid"
)

type CreateTenantRequest struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	LogoURL        string `json:"logo_url,omitempty"`
	ThemePrimary   string `json:"theme_primary,omitempty"`
	ThemeSecondary string `json:"theme_secondary,omitempty"`
	Address        string `json:"address,omitempty"`
	ContactEmail   string `json:"contact_email,omitempty"`
}

func (r CreateTenantRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Slug == "" {
		errors["slug"] = "Slug is required"
	} else if !validation.IsValidSlug(r.Slug) {
		errors["slug"] = "Slug may only contain lowercase letters, numbers and hyphens"
	}
	if r.ContactEmail != "" && !validation.IsValidEmail(r.ContactEmail) {
		errors["contact_email"] = "Invalid email format"
	}

	return errors
}

type UpdateTenantRequest struct {
	Name           *string `json:"name,omitempty"`
	Slug           *string `json:"slug,omitempty"`
	LogoURL        *string `json:"logo_url,omitempty"`
	ThemePrimary   *string `json:"theme_primary,omitempty"`
	ThemeSecondary *string `json:"theme_secondary,omitempty"`
	Address        *string `json:"address,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

func (r UpdateTenantRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name != nil && *r.Name == "" {
		errors["name"] = "Name cannot be empty"
	}
	if r.Slug != nil && !validation.IsValidSlug(*r.Slug) {
		errors["slug"] = "Slug may only contain lowercase letters, numbers and hyphens"
	}
	if r.ContactEmail != nil && *r.ContactEmail != "" && !validation.IsValidEmail(*r.ContactEmail) {
		errors["contact_email"] = "Invalid email format"
	}

	return errors
}

type TenantResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	LogoURL        string `json:"logo_url"`
	ThemePrimary   string `json:"theme_primary"`
	ThemeSecondary string `json:"theme_secondary"`
	Address        string `json:"address"`
	ContactEmail   string `json:"contact_email"`
	IsActive       bool   `json:"is_active"`
	OwnersCount    int64  `json:"owners_count"`
}

func ToTenantResponse(t *models.Tenant, ownersCount int64) TenantResponse {
	return TenantResponse{
		ID:             t.ID.String(),
		Name:           t.Name,
		Slug:           t.Slug,
		LogoURL:        t.LogoURL,
		ThemePrimary:   t.ThemePrimary,
		ThemeSecondary: t.ThemeSecondary,
		Address:        t.Address,
		ContactEmail:   t.ContactEmail,
		IsActive:       t.IsActive,
		OwnersCount:    ownersCount,
	}
}

func ToTenantListResponse(listings []tenants.TenantListing) []TenantResponse {
	out := make([]TenantResponse, 0, len(listings))
	for i := range listings {
		out = append(out, ToTenantResponse(&listings[i].Tenant, listings[i].OwnersCount))
	}
	return out
}

// TenantDetailResponse additionally embeds the tenant's owners.
type TenantDetailResponse struct {
	TenantResponse
	Owners []TenantOwner `json:"owners"`
}

type TenantOwner struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func ToTenantDetailResponse(t *models.Tenant, owners []models.User) TenantDetailResponse {
	resp := TenantDetailResponse{
		TenantResponse: ToTenantResponse(t, int64(len(owners))),
		Owners:         make([]TenantOwner, 0, len(owners)),
	}
	for _, o := range owners {
		resp.Owners = append(resp.Owners, TenantOwner{
			ID:        o.ID.String(),
			Email:     o.Email,
			FirstName: o.FirstName,
			LastName:  o.LastName,
		})
	}
	return resp
}

type InviteOwnerRequest struct {
	Email string `json:"email"`
}

func (r InviteOwnerRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}

	return errors
}

type InvitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

func ToInvitationResponse(i *models.OwnerInvitation) InvitationResponse {
	return InvitationResponse{
		ID:        i.ID.String(),
		Email:     i.Email,
		Token:     i.Token,
		Status:    string(i.Status),
		ExpiresAt: i.ExpiresAt,
	}
}

type AssignOwnerRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (r AssignOwnerRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.UserID == uuid.Nil {
		errors["user_id"] = "User id is required"
	}

	return errors
}

type AcceptInviteRequest struct {
	Token     string `json:"token"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r AcceptInviteRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Token is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if r.FirstName == "" {
		errors["first_name"] = "First name is required"
	}
	if r.LastName == "" {
		errors["last_name"] = "Last name is required"
	}

	return errors
}

type AcceptInviteResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}
