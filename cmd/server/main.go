package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-social/backend/internal/logging"
	"github.com/anonto42/nano-social/backend/internal/media"
	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := logging.New(cfg.Env)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize databases", "error", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	deps := router.Deps{
		Users:         repositories.NewMongoUserRepository(db.Database),
		Posts:         repositories.NewMongoPostRepository(db.Database),
		Notifications: repositories.NewMongoNotificationRepository(db.Database),
		Redis:         db.Redis,
		Config:        cfg,
		Logger:        logger,
	}
	if db.Postgres != nil {
		deps.Revocations = repositories.NewGormRevocationRepository(db.Postgres)
	}

	// Initialize Firebase
	if cfg.FirebaseEnabled() {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket, logger)
		if err != nil {
			logger.Error("failed to initialize firebase", "error", err)
			db.CloseDB()
			os.Exit(1)
		}
		deps.Firebase = app.AuthClient
		deps.Media = media.NewFirebaseStore(app.Bucket, app.BucketName, logger)
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_PATH not set, firebase login and image uploads disabled")
	}

	e := router.New(deps)
	srv := router.NewServer(":"+cfg.Port, e)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
	}
}
