package auth

import (
	"context"

	"github.com/clubhq/clubhq/internal/database/models"
	"github.com/google/uuid"
)

// Authenticator defines the interface for identity operations.
type Authenticator interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	CreateSuperuser(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Refresh(refreshToken string) (string, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateAccessToken(userID uuid.UUID, tenantID *uuid.UUID, email, role string) (string, error)
	GenerateRefreshToken(userID uuid.UUID, tenantID *uuid.UUID, email, role string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
