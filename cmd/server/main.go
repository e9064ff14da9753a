// Package main initializes and starts the citizen-records
// authentication server, setting up configuration, logging, database
// connections, repositories, services, and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/citizen-records/backend/internal/auth"
	"github.com/citizen-records/backend/internal/config"
	"github.com/citizen-records/backend/internal/db"
	"github.com/citizen-records/backend/internal/logger"
	"github.com/citizen-records/backend/internal/repository"
	"github.com/citizen-records/backend/internal/security"
	"github.com/citizen-records/backend/internal/server/handler/http"
	"github.com/citizen-records/backend/internal/service"
	"github.com/citizen-records/backend/internal/session"
	"github.com/citizen-records/backend/internal/token"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	zapLogger := log.Log

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Load configuration; the auth secret is required, so a missing one
	// stops the process here.
	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("cannot load config", zap.Error(err))
	}

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(cfg.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Sweep expired remember tokens and idle sessions in the background.
	db.StartExpiryCleaner(context.Background(), postgresDB,
		time.Hour,
		cfg.SessionTimeoutDuration(),
		zapLogger,
	)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	sessionRepo := repository.NewPostgresSessionRepository(postgresDB)
	rememberRepo := repository.NewPostgresRememberRepository(postgresDB)

	// Initialize the credential, token, session, and persistent-login
	// components.
	hasher := security.NewHasher(cfg.BcryptCost)
	codec := token.NewCodec([]byte(cfg.AuthSecret), cfg.TokenTTLDuration())
	sessions := session.NewManager(sessionRepo, cfg.SessionTimeoutDuration())
	remember := service.NewRememberService(rememberRepo, cfg.RememberTTLDuration(), zapLogger)
	authService := service.NewAuthService(userRepo, hasher)

	// The resolver decides, per request, which credential path applies.
	resolver := auth.NewResolver(sessions, remember, codec, cfg.SecureCookies, zapLogger)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{
		AuthService:   authService,
		Tokens:        codec,
		Sessions:      sessions,
		Remember:      remember,
		Resolver:      resolver,
		RememberTTL:   cfg.RememberTTLDuration(),
		SecureCookies: cfg.SecureCookies,
	}
	adminHandler := &http.AdminHandler{AuthService: authService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, adminHandler, resolver, cfg.StorageTimeoutDuration(), zapLogger)

	server := &nethttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.StorageTimeoutDuration(),
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
