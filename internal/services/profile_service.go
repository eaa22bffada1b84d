package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/media"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileService reads and edits user profiles.
type ProfileService struct {
	users  repositories.UserRepository
	media  media.Store
	logger *slog.Logger
}

func NewProfileService(users repositories.UserRepository, store media.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, media: store, logger: logger}
}

// GetProfile looks a user up by handle.
func (s *ProfileService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	return user, nil
}

// Update applies a merge-patch of req to the caller's profile. All checks run
// before any image is replaced.
func (s *ProfileService) Update(ctx context.Context, userID primitive.ObjectID, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}

	if (req.CurrentPassword == "") != (req.NewPassword == "") {
		return nil, models.NewValidationError("Please enter both current and new passwords")
	}
	if req.CurrentPassword != "" {
		if !auth.CheckPassword(user.Password, req.CurrentPassword) {
			return nil, models.NewValidationError("Current password is incorrect")
		}
		if len(req.NewPassword) < auth.MinPasswordLength {
			return nil, models.NewValidationError("Password must be at least 6 characters long")
		}
		hashed, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = hashed
	}

	if req.Email != "" && !validators.IsEmailShape(req.Email) {
		return nil, models.NewValidationError("Invalid email format")
	}
	if req.Username != "" && req.Username != user.Username {
		if err := s.ensureFree(ctx, s.users.GetUserByUsername, req.Username, "Username already exists"); err != nil {
			return nil, err
		}
	}
	if req.Email != "" && req.Email != user.Email {
		if err := s.ensureFree(ctx, s.users.GetUserByEmail, req.Email, "Email already exists"); err != nil {
			return nil, err
		}
	}

	if req.ProfilePic != "" {
		if user.ProfilePic, err = s.replaceImage(ctx, user.ProfilePic, req.ProfilePic); err != nil {
			return nil, err
		}
	}
	if req.CoverPic != "" {
		if user.CoverPic, err = s.replaceImage(ctx, user.CoverPic, req.CoverPic); err != nil {
			return nil, err
		}
	}

	user.Username = orDefault(req.Username, user.Username)
	user.FullName = orDefault(req.FullName, user.FullName)
	user.Email = orDefault(req.Email, user.Email)
	user.Bio = orDefault(req.Bio, user.Bio)
	user.Link = orDefault(req.Link, user.Link)

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, models.NewConflictError("Username or email already exists")
		}
		return nil, notFoundOr(err, "User")
	}
	return user, nil
}

func (s *ProfileService) ensureFree(ctx context.Context, lookup func(context.Context, string) (*models.User, error), value, message string) error {
	_, err := lookup(ctx, value)
	if err == nil {
		return models.NewConflictError(message)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return models.NewInternalError(err)
	}
	return nil
}

// replaceImage deletes the previous asset and uploads the new payload. If the
// upload fails the profile keeps pointing at the deleted asset. Clients echo the
// stored URL back for an image they did not touch; that leaves it as is.
func (s *ProfileService) replaceImage(ctx context.Context, current, dataURI string) (string, error) {
	if dataURI == current {
		return current, nil
	}
	if _, err := media.ParseDataURI(dataURI); err != nil {
		return "", mediaError(err)
	}
	if current != "" {
		if err := s.media.Delete(ctx, current); err != nil {
			return "", models.NewInternalError(err)
		}
	}
	url, err := s.media.Upload(ctx, dataURI)
	if err != nil {
		return "", mediaError(err)
	}
	return url, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
