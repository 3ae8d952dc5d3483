//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/clubhq/clubhq/internal/auth"
	"github.com/clubhq/clubhq/internal/database"
	"github.com/clubhq/clubhq/internal/tenants"
	"github.com/clubhq/clubhq/pkg/config"
	"github.com/clubhq/clubhq/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry(), cfg.JWT.RefreshExpiry())
	authService := auth.NewService(db, jwtService)
	tenantService := tenants.NewService(db, nil, logger, cfg.Invite.Expiry())

	email := os.Getenv("SUPERADMIN_EMAIL")
	password := os.Getenv("SUPERADMIN_PASSWORD")

	if email == "" {
		email = "superadmin@example.com"
	}
	if password == "" {
		password = "ChangeMe123!"
	}

	user, err := authService.CreateSuperuser(context.Background(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			fmt.Printf("Superadmin already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create superadmin: %v", err)
	}

	fmt.Printf("Superadmin created: %s\n", user.Email)

	tenant, err := tenantService.Create(context.Background(), tenants.CreateTenantInput{
		Name: "Demo Club",
		Slug: "demo-club",
	})
	if err != nil {
		if errors.Is(err, tenants.ErrSlugTaken) {
			fmt.Println("Demo tenant already exists")
			return
		}
		log.Fatalf("failed to create demo tenant: %v", err)
	}

	fmt.Printf("Demo tenant created: %s (%s)\n", tenant.Name, tenant.Slug)
}
