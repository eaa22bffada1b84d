package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	posts *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(posts *services.PostService) *LikeHandler {
	return &LikeHandler{posts: posts}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/like/:id", h.LikeUnlike)
}

// LikeUnlike toggles the caller's like on a post
func (h *LikeHandler) LikeUnlike(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}

	result, err := h.posts.LikeUnlike(c.Request().Context(), current.ID, postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
