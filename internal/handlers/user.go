package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile lookups and edits
type UserHandler struct {
	profiles *services.ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// RegisterProfileRoutes registers profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/profile/:username", h.GetProfile)
	g.POST("/users/update", h.UpdateProfile)
}

// GetProfile returns a public profile by handle
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.profiles.GetProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial update to the caller's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.profiles.Update(c.Request().Context(), current.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
