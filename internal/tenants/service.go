package tenants

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clubhq/clubhq/internal/auth"
	"github.com/clubhq/clubhq/internal/database/models"
	"github.com/clubhq/clubhq/internal/tasks"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

var (
	ErrTenantNotFound         = errors.New("tenant not found")
	ErrSlugTaken              = errors.New("slug is already in use")
	ErrDuplicatePendingInvite = errors.New("an invitation is already pending for this email")
	ErrInvalidInviteToken     = errors.New("invalid invitation token")
	ErrInviteAlreadyUsed      = errors.New("invitation has already been used")
	ErrInviteExpired          = errors.New("invitation has expired")
	ErrAssigneeNotFound       = errors.New("user not found")
	ErrAssigneeNotOwner       = errors.New("user must have OWNER role")
)

type Service struct {
	db           *gorm.DB
	queue        *asynq.Client // nil when Redis is unavailable; invites log inline
	logger       *slog.Logger
	inviteExpiry time.Duration
}

func NewService(db *gorm.DB, queue *asynq.Client, logger *slog.Logger, inviteExpiry time.Duration) *Service {
	if inviteExpiry <= 0 {
		inviteExpiry = models.DefaultInviteExpiry
	}
	return &Service{db: db, queue: queue, logger: logger, inviteExpiry: inviteExpiry}
}

type CreateTenantInput struct {
	Name           string
	Slug           string
	LogoURL        string
	ThemePrimary   string
	ThemeSecondary string
	Address        string
	ContactEmail   string
}

type UpdateTenantInput struct {
	Name           *string
	Slug           *string
	LogoURL        *string
	ThemePrimary   *string
	ThemeSecondary *string
	Address        *string
	ContactEmail   *string
	IsActive       *bool
}

// TenantListing is a tenant plus its derived owner count. The count is
// computed per listing, never persisted.
type TenantListing struct {
	models.Tenant
	OwnersCount int64
}

func (s *Service) Create(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	var existing models.Tenant
	if err := s.db.WithContext(ctx).Where("slug = ?", input.Slug).First(&existing).Error; err == nil {
		return nil, ErrSlugTaken
	}

	tenant := models.Tenant{
		Name:           input.Name,
		Slug:           input.Slug,
		LogoURL:        input.LogoURL,
		ThemePrimary:   input.ThemePrimary,
		ThemeSecondary: input.ThemeSecondary,
		Address:        input.Address,
		ContactEmail:   input.ContactEmail,
		IsActive:       true,
	}

	if err := s.db.WithContext(ctx).Create(&tenant).Error; err != nil {
		return nil, err
	}

	return &tenant, nil
}

// GetForViewer retrieves a tenant subject to role visibility: superadmins see
// every tenant, owners only their own, everyone else none.
func (s *Service) GetForViewer(ctx context.Context, id uuid.UUID, role models.Role, viewerTenantID *uuid.UUID) (*models.Tenant, error) {
	if role != models.RoleSuperAdmin {
		if role != models.RoleOwner || viewerTenantID == nil || *viewerTenantID != id {
			return nil, ErrTenantNotFound
		}
	}

	var tenant models.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// List returns tenants visible to the caller, ordered by name, each with its
// owner count.
func (s *Service) List(ctx context.Context, role models.Role, viewerTenantID *uuid.UUID) ([]TenantListing, error) {
	query := s.db.WithContext(ctx).Model(&models.Tenant{}).Order("name")

	switch {
	case role == models.RoleSuperAdmin:
		// no filter
	case role == models.RoleOwner && viewerTenantID != nil:
		query = query.Where("id = ?", *viewerTenantID)
	default:
		return []TenantListing{}, nil
	}

	var tenants []models.Tenant
	if err := query.Find(&tenants).Error; err != nil {
		return nil, err
	}

	counts, err := s.ownerCounts(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]TenantListing, 0, len(tenants))
	for _, t := range tenants {
		listings = append(listings, TenantListing{Tenant: t, OwnersCount: counts[t.ID]})
	}
	return listings, nil
}

func (s *Service) ownerCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		TenantID uuid.UUID
		Count    int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("tenant_id, count(*) as count").
		Where("role = ? AND tenant_id IS NOT NULL", models.RoleOwner).
		Group("tenant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.TenantID] = r.Count
	}
	return counts, nil
}

// OwnersCount returns the derived owner count for a single tenant.
func (s *Service) OwnersCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND tenant_id = ?", models.RoleOwner, tenantID).
		Count(&count).Error
	return count, err
}

// Owners lists the tenant's OWNER users ordered by email.
func (s *Service) Owners(ctx context.Context, tenantID uuid.UUID) ([]models.User, error) {
	var owners []models.User
	err := s.db.WithContext(ctx).
		Where("role = ? AND tenant_id = ?", models.RoleOwner, tenantID).
		Order("email").
		Find(&owners).Error
	return owners, err
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateTenantInput) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	if input.Slug != nil && *input.Slug != tenant.Slug {
		var existing models.Tenant
		if err := s.db.WithContext(ctx).Where("slug = ?", *input.Slug).First(&existing).Error; err == nil {
			return nil, ErrSlugTaken
		}
		tenant.Slug = *input.Slug
	}
	if input.Name != nil {
		tenant.Name = *input.Name
	}
	if input.LogoURL != nil {
		tenant.LogoURL = *input.LogoURL
	}
	if input.ThemePrimary != nil {
		tenant.ThemePrimary = *input.ThemePrimary
	}
	if input.ThemeSecondary != nil {
		tenant.ThemeSecondary = *input.ThemeSecondary
	}
	if input.Address != nil {
		tenant.Address = *input.Address
	}
	if input.ContactEmail != nil {
		tenant.ContactEmail = *input.ContactEmail
	}
	if input.IsActive != nil {
		tenant.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Save(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Delete removes a tenant. Invitations are cascade-deleted with it; users
// keep their accounts and lose only the tenant reference.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTenantNotFound
		}
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("tenant_id = ?", id).
			Update("tenant_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", id).
			Delete(&models.OwnerInvitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tenant).Error
	})
}

// InviteOwner creates a PENDING invitation for (tenant, email) and hands the
// mock email off to the task queue. The duplicate check is a read-then-write
// and stays advisory under concurrent calls.
func (s *Service) InviteOwner(ctx context.Context, tenantID uuid.UUID, email string) (*models.OwnerInvitation, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	email = auth.NormalizeEmail(email)

	var pending int64
	err := s.db.WithContext(ctx).
		Model(&models.OwnerInvitation{}).
		Where("tenant_id = ? AND email = ? AND status = ?", tenantID, email, models.InvitePending).
		Count(&pending).Error
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, ErrDuplicatePendingInvite
	}

	invitation := models.OwnerInvitation{
		TenantID:  tenantID,
		Email:     email,
		Status:    models.InvitePending,
		ExpiresAt: time.Now().Add(s.inviteExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&invitation).Error; err != nil {
		return nil, err
	}

	s.notifyInvite(ctx, &tenant, &invitation)

	return &invitation, nil
}

func (s *Service) notifyInvite(ctx context.Context, tenant *models.Tenant, invitation *models.OwnerInvitation) {
	if s.queue != nil {
		task, err := tasks.NewInvitationEmailTask(tasks.InvitationEmailPayload{
			InvitationID: invitation.ID,
			TenantID:     tenant.ID,
			TenantName:   tenant.Name,
			Email:        invitation.Email,
			Token:        invitation.Token,
		})
		if err == nil {
			if _, err := s.queue.EnqueueContext(ctx, task); err == nil {
				return
			}
			s.logger.Warn("failed to enqueue invitation email", "invitation_id", invitation.ID)
		}
	}

	// Delivery is out of scope; without a queue the mock send happens inline.
	s.logger.Info("mock sending owner invitation",
		"tenant", tenant.Name,
		"email", invitation.Email,
		"token", invitation.Token,
	)
}

// ResolveToken looks up an invitation by token. No side effects.
func (s *Service) ResolveToken(ctx context.Context, token string) (*models.OwnerInvitation, error) {
	var invitation models.OwnerInvitation
	if err := s.db.WithContext(ctx).
		Preload("Tenant").
		Where("token = ?", token).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteToken
		}
		return nil, err
	}
	return &invitation, nil
}

// MarkExpired transitions an invitation to EXPIRED. Idempotent; only status
// and timestamps change.
func (s *Service) MarkExpired(ctx context.Context, invitation *models.OwnerInvitation) error {
	if invitation.Status == models.InviteExpired {
		return nil
	}
	invitation.Status = models.InviteExpired
	return s.db.WithContext(ctx).
		Model(invitation).
		Update("status", models.InviteExpired).Error
}

type AcceptInviteInput struct {
	Token     string
	Password  string
	FirstName string
	LastName  string
}

// AcceptInvite converts a PENDING, unexpired invitation into an OWNER account
// bound to the invitation's tenant. The status check precedes the expiry
// check: a used invitation reports AlreadyUsed even when it is also past its
// expiry. A PENDING invitation found expired is marked EXPIRED as a side
// effect of the failed attempt. The user upsert and the status flip happen in
// one transaction.
func (s *Service) AcceptInvite(ctx context.Context, input AcceptInviteInput) (*models.User, error) {
	invitation, err := s.ResolveToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	if invitation.Status != models.InvitePending {
		return nil, ErrInviteAlreadyUsed
	}
	if invitation.IsExpired() {
		if err := s.MarkExpired(ctx, invitation); err != nil {
			return nil, err
		}
		return nil, ErrInviteExpired
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", invitation.Email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:        invitation.Email,
				PasswordHash: hash,
				FirstName:    input.FirstName,
				LastName:     input.LastName,
				Role:         models.RoleOwner,
				TenantID:     &invitation.TenantID,
				IsActive:     true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			user.TenantID = &invitation.TenantID
			user.Role = models.RoleOwner
			user.FirstName = input.FirstName
			user.LastName = input.LastName
			user.PasswordHash = hash
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		invitation.Status = models.InviteAccepted
		invitation.AcceptedAt = &now
		return tx.Model(invitation).Updates(map[string]interface{}{
			"status":      models.InviteAccepted,
			"accepted_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// AssignOwner binds an existing OWNER user to a tenant directly, without the
// invitation flow.
func (s *Service) AssignOwner(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, err
	}

	if user.Role != models.RoleOwner {
		return nil, ErrAssigneeNotOwner
	}

	user.TenantID = &tenantID
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
