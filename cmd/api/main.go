package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"

	_ "github.com/redmonkez12/notes-api/docs"
	"github.com/redmonkez12/notes-api/internal/auth"
	"github.com/redmonkez12/notes-api/internal/config"
	"github.com/redmonkez12/notes-api/internal/database"
	httpServer "github.com/redmonkez12/notes-api/internal/http"
	"github.com/redmonkez12/notes-api/internal/logging"
	"github.com/redmonkez12/notes-api/internal/note"
	"github.com/redmonkez12/notes-api/internal/user"
)

// @title           Notes API
// @version         1.0
// @description     REST backend for a notes application with JWT dual-token authentication.

// @host      localhost:4000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting notes-api",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_backend", cfg.Auth.TokenBackend,
	)

	db, err := initDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := database.RunMigrations(ctx, db.DB); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	tokenService, err := newTokenService(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	userRepo := user.NewRepository(db)
	noteRepo := note.NewRepository(db)

	isProduction := !cfg.Server.IsDevelopment()

	authService := auth.NewService(
		userRepo,
		tokenService,
		logger,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	authHandler := auth.NewHandler(authService, isProduction)
	authMiddleware := auth.NewMiddleware(authService, isProduction)
	noteHandler := note.NewHandler(noteRepo)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, noteHandler, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func initDB(cfg *config.Config) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return database.NewBunDB(sqlDB), nil
}

// newTokenService selects the configured token implementation. Both produce
// opaque strings carrying only the user ID, so the rest of the service does
// not care which one is active.
func newTokenService(cfg *config.Config) (auth.TokenService, error) {
	switch cfg.Auth.TokenBackend {
	case "paseto":
		return auth.NewPasetoService(cfg.Auth.PasetoKey)
	default:
		return auth.NewJWTService(cfg.Auth.JWTSecret), nil
	}
}
