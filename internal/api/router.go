package api

import (
	"log/slog"

	"github.com/clubhq/clubhq/internal/api/handlers"
	"github.com/clubhq/clubhq/internal/api/middleware"
	"github.com/clubhq/clubhq/internal/auth"
	"github.com/clubhq/clubhq/internal/metrics"
	"github.com/clubhq/clubhq/internal/tenants"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	TenantService  *tenants.Service
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics)

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	accountHandler := handlers.NewAccountHandler(cfg.AuthService)
	tenantHandler := handlers.NewTenantHandler(cfg.TenantService)

	// Health and metrics endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Method("GET", "/metrics", metrics.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public account endpoints
		r.Post("/accounts/login", accountHandler.Login)
		r.Post("/accounts/refresh", accountHandler.Refresh)

		// Public invitation acceptance
		r.Post("/owners/accept-invite", tenantHandler.AcceptInvite)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/accounts/me", accountHandler.Me)

			// Superadmin-only account registration
			r.With(middleware.RequireSuperAdmin()).
				Post("/accounts/register", accountHandler.Register)

			// Tenant retrieval: any authenticated caller, visibility filtered
			r.Get("/tenants/{id}", tenantHandler.Get)

			// Superadmin-only tenant administration
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSuperAdmin())

				r.Get("/tenants", tenantHandler.List)
				r.Post("/tenants", tenantHandler.Create)
				r.Put("/tenants/{id}", tenantHandler.Update)
				r.Patch("/tenants/{id}", tenantHandler.Update)
				r.Delete("/tenants/{id}", tenantHandler.Delete)
				r.Post("/tenants/{id}/invite-owner", tenantHandler.InviteOwner)
				r.Post("/tenants/{id}/assign-owner", tenantHandler.AssignOwner)
			})
		})
	})

	return &Router{r}
}
