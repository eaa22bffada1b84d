package middleware

import (
	"context"
	"errors"

	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/logging"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserContextKey is the echo context key holding the authenticated *models.User.
const UserContextKey = "user"

// TokenVerifier verifies session tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.JwtCustomClaims, error)
}

// UserLoader loads the account a token refers to.
type UserLoader interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// SessionGuard requires a valid session cookie and loads the caller into the context.
func SessionGuard(tokens TokenVerifier, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string
			if cookie, err := c.Cookie(auth.CookieName); err == nil {
				token = cookie.Value
			}

			ctx := c.Request().Context()
			claims, err := tokens.Verify(ctx, token)
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				return models.NewUnauthorizedError("Unauthorized: No token provided")
			case errors.Is(err, auth.ErrInvalidToken):
				return models.NewUnauthorizedError("Unauthorized: Invalid token")
			case err != nil:
				return models.NewInternalError(err)
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				return models.NewUnauthorizedError("Unauthorized: Invalid token")
			}
			user, err := users.GetUserByID(ctx, userID)
			if errors.Is(err, repositories.ErrNotFound) {
				return models.NewNotFoundError("User")
			}
			if err != nil {
				return models.NewInternalError(err)
			}

			c.Set(UserContextKey, user)
			c.SetRequest(c.Request().WithContext(logging.WithUserID(ctx, user.ID.Hex())))
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by SessionGuard.
func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(UserContextKey).(*models.User)
	return user, ok && user != nil
}
