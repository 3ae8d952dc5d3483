package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/clubhq/clubhq/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInactiveUser        = errors.New("user is inactive")
	ErrInvalidRole         = errors.New("invalid role provided")
	ErrMissingPassword     = errors.New("users must have a password")
	ErrOwnerRequiresTenant = errors.New("owners must be associated with a tenant")
)

type Service struct {
	db  *gorm.DB
	jwt *JWTService
}

func NewService(db *gorm.DB, jwt *JWTService) *Service {
	return &Service{db: db, jwt: jwt}
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
	TenantID  *uuid.UUID
	IsStaff   bool
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Role         models.Role
	TenantID     *uuid.UUID
	Email        string
	User         *models.User
}

// NormalizeEmail lowercases and trims an email address so lookups are
// case and whitespace insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser is the administrative creation path. Owners must arrive with a
// tenant already attached; the invite-accept path assigns one atomically and
// does not go through here.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}

	role := input.Role
	if role == "" {
		role = models.RoleClient
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if input.Password == "" {
		return nil, ErrMissingPassword
	}
	if role == models.RoleOwner && input.TenantID == nil {
		return nil, ErrOwnerRequiresTenant
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		TenantID:     input.TenantID,
		IsActive:     true,
		IsStaff:      input.IsStaff,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// CreateSuperuser forces the SUPERADMIN role and the staff flag.
func (s *Service) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	return s.CreateUser(ctx, CreateUserInput{
		Email:    email,
		Password: password,
		Role:     models.RoleSuperAdmin,
		IsStaff:  true,
	})
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Tenant").
		Where("email = ?", NormalizeEmail(input.Email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	access, err := s.jwt.GenerateAccessToken(user.ID, user.TenantID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.TenantID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         user.Role,
		TenantID:     user.TenantID,
		Email:        user.Email,
		User:         &user,
	}, nil
}

// Refresh mints a new access token from a valid refresh token.
func (s *Service) Refresh(refreshToken string) (string, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}
	return s.jwt.GenerateAccessToken(claims.UserID, claims.TenantID, claims.Email, claims.Role)
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Tenant").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
