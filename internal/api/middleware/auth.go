package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clubhq/clubhq/internal/auth"
	"github.com/clubhq/clubhq/internal/database/models"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	TenantIDKey  contextKey = "tenant_id"
	UserEmailKey contextKey = "user_email"
	UserRoleKey  contextKey = "user_role"
)

// Auth validates the bearer token and loads the caller's identity into the
// request context.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, TenantIDKey, claims.TenantID)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
			ctx = context.WithValue(ctx, UserRoleKey, models.Role(claims.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Helper functions to extract values from context
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetTenantID returns the caller's tenant reference, nil for unaffiliated
// users.
func GetTenantID(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(TenantIDKey).(*uuid.UUID); ok {
		return id
	}
	return nil
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func GetUserRole(ctx context.Context) models.Role {
	if role, ok := ctx.Value(UserRoleKey).(models.Role); ok {
		return role
	}
	return ""
}

// RequireRole permits only callers whose role is in the given set. OWNER
// sits outside the strict tier chain, so policies are explicit sets rather
// than a numeric tier compare.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())

			for _, role := range roles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// Named policies. The canonical role set has no ADMIN tier; checks that
// historically referenced it collapse onto SUPERADMIN.
func RequireSuperAdmin() func(http.Handler) http.Handler {
	return RequireRole(models.RoleSuperAdmin)
}

func RequireCoach() func(http.Handler) http.Handler {
	return RequireRole(models.RoleCoach, models.RoleSuperAdmin)
}

func RequireClient() func(http.Handler) http.Handler {
	return RequireRole(models.RoleClient, models.RoleCoach, models.RoleSuperAdmin)
}
