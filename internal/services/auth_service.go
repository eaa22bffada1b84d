package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client from the Firebase SDK satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// AuthService handles account creation and credential checks.
type AuthService struct {
	users    repositories.UserRepository
	firebase IDTokenVerifier
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. firebase may be nil, which disables FirebaseLogin.
func NewAuthService(users repositories.UserRepository, firebase IDTokenVerifier, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, firebase: firebase, logger: logger}
}

// Signup creates a new account. The caller issues the session token.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if !validators.IsEmailShape(req.Email) {
		return nil, models.NewValidationError("Invalid email format")
	}

	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, models.NewConflictError("Username already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, models.NewInternalError(err)
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, models.NewConflictError("Email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, models.NewInternalError(err)
	}

	if len(req.Password) < auth.MinPasswordLength {
		return nil, models.NewValidationError("Password must be at least 6 characters long")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: hashed,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, models.NewConflictError("Username or email already exists")
		}
		return nil, models.NewInternalError(err)
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID.Hex(), "username", user.Username)
	return user, nil
}

// Login checks a handle/password pair.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		auth.BurnPasswordCheck(req.Password)
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// FirebaseLogin exchanges a Firebase ID token for the matching local account,
// creating one on first sign-in. Accounts are matched by Firebase UID; an
// existing account is linked by email only when Firebase has verified it.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.User, error) {
	if s.firebase == nil {
		return nil, models.NewUnauthorizedError("Firebase login is not configured")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.WarnContext(ctx, "firebase token rejected", "error", err)
		return nil, models.NewUnauthorizedError("Invalid Firebase ID token")
	}

	user, err := s.users.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, models.NewInternalError(err)
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, models.NewValidationError("Firebase account has no email address")
	}
	if verified, _ := token.Claims["email_verified"].(bool); !verified {
		s.logger.WarnContext(ctx, "firebase login with unverified email", "firebase_uid", token.UID)
		return nil, models.NewUnauthorizedError("Firebase email address is not verified")
	}

	user, err = s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return s.linkFirebase(ctx, user, token.UID)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, models.NewInternalError(err)
	}

	username, err := s.availableUsername(ctx, email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	fullName, _ := token.Claims["name"].(string)
	if fullName == "" {
		fullName = username
	}
	picture, _ := token.Claims["picture"].(string)

	// the account gets a random password; it can only sign in through Firebase until one is set
	hashed, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user = &models.User{
		Username:    username,
		FullName:    fullName,
		Email:       email,
		Password:    hashed,
		ProfilePic:  picture,
		FirebaseUID: token.UID,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// lost a race with a concurrent first sign-in
			if existing, lookupErr := s.users.GetUserByFirebaseUID(ctx, token.UID); lookupErr == nil {
				return existing, nil
			}
			return nil, models.NewConflictError("Username or email already exists")
		}
		return nil, models.NewInternalError(err)
	}

	s.logger.InfoContext(ctx, "user created from firebase login", "user_id", user.ID.Hex(), "firebase_uid", token.UID)
	return user, nil
}

func (s *AuthService) linkFirebase(ctx context.Context, user *models.User, uid string) (*models.User, error) {
	linked, err := s.users.LinkFirebaseUID(ctx, user.ID, uid)
	if err != nil && !errors.Is(err, repositories.ErrDuplicateKey) {
		return nil, models.NewInternalError(err)
	}
	if err != nil || !linked {
		return nil, models.NewUnauthorizedError("This account is linked to a different Firebase user")
	}
	user.FirebaseUID = uid
	s.logger.InfoContext(ctx, "linked firebase account", "user_id", user.ID.Hex(), "firebase_uid", uid)
	return user, nil
}

func (s *AuthService) availableUsername(ctx context.Context, email string) (string, error) {
	base := usernameBase(email)
	candidate := base
	for i := 1; i <= 20; i++ {
		_, err := s.users.GetUserByUsername(ctx, candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8], nil
}

// usernameBase derives a handle from the local part of an email address.
func usernameBase(email string) string {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	if b.Len() > 30 {
		return b.String()[:30]
	}
	return b.String()
}

// GetMe returns the caller's own account.
func (s *AuthService) GetMe(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	return user, nil
}
