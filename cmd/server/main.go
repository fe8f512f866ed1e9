package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/okozhina/go-task-manager/internal/auth"
	"github.com/okozhina/go-task-manager/internal/config"
	"github.com/okozhina/go-task-manager/internal/db"
	"github.com/okozhina/go-task-manager/internal/handlers"
	"github.com/okozhina/go-task-manager/internal/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConn, err := db.Connect("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()

	if err := db.EnsureSchema(dbConn); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	accounts := db.NewAccountRepository(dbConn)
	if err := seedAdmin(dbConn, accounts, cfg); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	handler := &handlers.Handler{
		Accounts: accounts,
		Tasks:    db.NewTaskRepository(dbConn),
		Tokens:   auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL),
		// allow max 5 login attempts per 15 minutes from the same IP
		RateLimiter:   handlers.NewRateLimiter(5, 15*time.Minute),
		AllowedOrigin: cfg.CORSOrigin,
	}
	defer handler.RateLimiter.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: handler.Routes(),
	}
	startServer(server, cfg.ServerPort)
}

// seedAdmin creates the bootstrap admin account when ADMIN_USERNAME and
// ADMIN_PASSWORD are configured and the account does not exist yet.
func seedAdmin(dbConn *sql.DB, accounts *db.AccountRepository, cfg *config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := accounts.GetByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	} else if err != sql.ErrNoRows {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	admin := &models.Account{
		ID:           uuid.New(),
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := accounts.Create(ctx, admin); err != nil {
		return err
	}
	log.Printf("Seeded admin account: %s", admin.Username)
	return nil
}

func startServer(server *http.Server, port string) {
	log.Printf("Starting server on :%s", port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
