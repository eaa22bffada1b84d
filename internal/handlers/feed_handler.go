package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the post feeds
type FeedHandler struct {
	posts *services.PostService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *services.PostService) *FeedHandler {
	return &FeedHandler{posts: posts}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts/all", h.All)
	g.GET("/posts/following", h.Following)
	g.GET("/posts/liked/:id", h.Liked)
	g.GET("/posts/user/:username", h.ByUser)
}

// All returns every post, newest first
func (h *FeedHandler) All(c echo.Context) error {
	posts, err := h.posts.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// Following returns posts from accounts the caller follows
func (h *FeedHandler) Following(c echo.Context) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	posts, err := h.posts.Following(c.Request().Context(), current.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// Liked returns the posts liked by user :id
func (h *FeedHandler) Liked(c echo.Context) error {
	userID, err := objectIDParam(c, "id")
	if err != nil {
		return err
	}
	posts, err := h.posts.Liked(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// ByUser returns the posts written by :username
func (h *FeedHandler) ByUser(c echo.Context) error {
	posts, err := h.posts.ByUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}
