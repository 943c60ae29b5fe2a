package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/lmittmann/tint"
	"github.com/nudgely/auth-service/config"
	"github.com/nudgely/auth-service/db"
	"github.com/nudgely/auth-service/internal/auth/handler"
	repo "github.com/nudgely/auth-service/internal/auth/repository/postgres"
	"github.com/nudgely/auth-service/internal/auth/service"
	"github.com/nudgely/auth-service/internal/mailer"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	if err := db.RunMigrations(cfg.DBURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	userRepo := repo.NewUserRepository(dbPool)
	sessionRepo := repo.NewSessionRepository(dbPool)
	codeRepo := repo.NewVerificationCodeRepository(dbPool)
	attemptRepo := repo.NewLoginAttemptRepository(dbPool)

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	guard := service.NewVerificationGuard(codeRepo)
	lockout := service.NewLockoutPolicy(userRepo, cfg.LockoutThreshold, cfg.LockoutDuration)
	hasher := service.NewBcryptHasher()
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)

	userService := service.NewUserService(userRepo, sessionRepo, attemptRepo,
		tokenService, guard, lockout, hasher, smtpMailer, nil, cfg)
	authHandler := handler.NewAuthHandler(userService)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	slog.Info("auth service listening", "port", cfg.Port, "env", cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		h = tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel})
	}

	slog.SetDefault(slog.New(h))
}
