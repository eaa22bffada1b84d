package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow graph HTTP requests
type FollowHandler struct {
	graph *services.GraphService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.GraphService) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/follow/:id", h.FollowUnfollow)
	g.GET("/users/suggested", h.Suggested)
	g.GET("/users/followers/:username", h.Followers)
	g.GET("/users/following/:username", h.Following)
}

// FollowUnfollow toggles whether the caller follows :id
func (h *FollowHandler) FollowUnfollow(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	targetID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	result, err := h.graph.FollowUnfollow(c.Request().Context(), current.ID, targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Suggested returns up to four users the caller may want to follow
func (h *FollowHandler) Suggested(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.graph.SuggestedUsers(c.Request().Context(), current.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *FollowHandler) Followers(c echo.Context) error {
	users, err := h.graph.Followers(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *FollowHandler) Following(c echo.Context) error {
	users, err := h.graph.Following(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
