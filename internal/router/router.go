package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/media"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Deps are the stores and clients the routes are built from. Revocations,
// Firebase, Media and Redis are optional.
type Deps struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Notifications repositories.NotificationRepository
	Revocations   auth.RevocationStore
	Firebase      services.IDTokenVerifier
	Media         media.Store
	Redis         *redis.Client
	Config        *config.Config
	Logger        *slog.Logger
}

// New builds the echo instance with global middleware and every route.
func New(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewErrorHandler(deps.Logger, !deps.Config.IsProduction())

	config.SetupMiddleware(e, deps.Config, deps.Logger)
	SetupRoutes(e, deps)
	return e
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	cfg, logger := deps.Config, deps.Logger
	store := deps.Media
	if store == nil {
		store = media.DisabledStore{}
	}

	e.GET("/health", handlers.HealthCheck)

	// --- Services ---
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, cfg.IsProduction(), deps.Revocations)
	notifier := services.NewNotificationService(deps.Notifications, deps.Users, logger)
	authService := services.NewAuthService(deps.Users, deps.Firebase, logger)
	profiles := services.NewProfileService(deps.Users, store, logger)
	graph := services.NewGraphService(deps.Users, notifier, logger)
	posts := services.NewPostService(deps.Posts, deps.Users, notifier, store, logger)

	limit := func(resource string) echo.MiddlewareFunc {
		return middleware.RateLimit(deps.Redis, resource, cfg.AuthRateLimit, cfg.AuthRateWindow, logger)
	}

	// --- Unprotected routes for authentication ---
	public := e.Group("/api/auth")

	// --- Protected routes (require a session cookie) ---
	api := e.Group("/api", middleware.SessionGuard(tokens, deps.Users))

	handlers.NewAuthHandler(authService, tokens, logger).
		RegisterAuthRoutes(public, api, limit, deps.Firebase != nil)
	handlers.NewUserHandler(profiles).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(graph).RegisterFollowRoutes(api)
	handlers.NewPostHandler(posts).RegisterPostRoutes(api)
	handlers.NewLikeHandler(posts).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(posts).RegisterCommentRoutes(api)
	handlers.NewFeedHandler(posts).RegisterFeedRoutes(api)
	handlers.NewNotificationHandler(notifier).RegisterNotificationRoutes(api)

	logger.Info("routes configured", "routes", len(e.Routes()))
}

// NewServer wraps e in an http.Server with the timeouts used in production.
func NewServer(addr string, e *echo.Echo) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
