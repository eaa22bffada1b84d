package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	tokens      *auth.TokenService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens, logger: logger}
}

// RegisterAuthRoutes registers the public routes on public and the session
// routes on protected. limit wraps the credential endpoints.
func (h *AuthHandler) RegisterAuthRoutes(public, protected *echo.Group, limit func(resource string) echo.MiddlewareFunc, firebaseEnabled bool) {
	public.POST("/signup", h.Signup, limit("signup"))
	public.POST("/login", h.Login, limit("login"))
	if firebaseEnabled {
		public.POST("/firebase", h.FirebaseLogin, limit("firebase"))
	}
	public.POST("/logout", h.Logout)
	protected.GET("/auth/getUser", h.GetMe)
}

// Signup handles local user registration
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if err := h.tokens.Issue(c, user.ID.Hex()); err != nil {
		return models.NewInternalError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login handles handle/password authentication
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if err := h.tokens.Issue(c, user.ID.Hex()); err != nil {
		return models.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// FirebaseLogin verifies a Firebase ID token and starts a local session
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	if err := h.tokens.Issue(c, user.ID.Hex()); err != nil {
		return models.NewInternalError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie. It always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.tokens.Revoke(c); err != nil {
		h.logger.WarnContext(c.Request().Context(), "token revocation failed", "error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// GetMe returns the caller's own profile
func (h *AuthHandler) GetMe(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.authService.GetMe(c.Request().Context(), current.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
