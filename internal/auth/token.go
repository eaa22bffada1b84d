// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CookieName is the cookie that carries the session token.
const CookieName = "jwt"

const cookiePath = "/api"

var (
	ErrMissingToken = errors.New("token missing")
	ErrInvalidToken = errors.New("token invalid")
)

// RevocationStore records logged-out token ids until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenService signs session tokens and manages the session cookie.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	secure bool
	store  RevocationStore
	now    func() time.Time
}

// NewTokenService creates a TokenService. store may be nil, in which case
// logout only clears the cookie.
func NewTokenService(secret string, ttl time.Duration, secure bool, store RevocationStore) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		store:  store,
		now:    time.Now,
	}
}

// Sign returns a signed token for userID.
func (s *TokenService) Sign(userID string) (string, error) {
	now := s.now()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Issue signs a token for userID and sets it as the session cookie.
func (s *TokenService) Issue(c echo.Context, userID string) error {
	token, err := s.Sign(userID)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	c.SetCookie(s.cookie(token, int(s.ttl.Seconds()), s.now().Add(s.ttl)))
	return nil
}

// Verify parses token and returns its claims.
func (s *TokenService) Verify(ctx context.Context, token string) (*models.JwtCustomClaims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if s.store != nil && claims.ID != "" {
		revoked, err := s.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

func (s *TokenService) parse(token string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke clears the session cookie and, when a store is configured, records the
// presented token so it no longer verifies. The cookie is cleared even when
// recording fails.
func (s *TokenService) Revoke(c echo.Context) error {
	s.ClearCookie(c)
	if s.store == nil {
		return nil
	}
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := s.parse(cookie.Value)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.store.Revoke(c.Request().Context(), claims.ID, claims.UserID, claims.ExpiresAt.Time)
}

// ClearCookie overwrites the session cookie with an expired one.
func (s *TokenService) ClearCookie(c echo.Context) {
	c.SetCookie(s.cookie("", -1, time.Unix(0, 0)))
}

func (s *TokenService) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     cookiePath,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
