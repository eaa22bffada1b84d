package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anonto42/nano-social/backend/internal/media"
	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
)

// notFoundOr maps a repository miss to a 404 for resource and anything else to a 500.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return models.NewNotFoundError(resource)
	}
	return models.NewInternalError(err)
}

func mediaError(err error) error {
	switch {
	case errors.Is(err, media.ErrInvalidDataURI):
		return models.NewValidationError("Invalid image data")
	case errors.Is(err, media.ErrTooLarge):
		return models.NewValidationError("Image too large")
	case errors.Is(err, media.ErrUnavailable):
		return models.NewValidationError("Image uploads are not available")
	}
	return models.NewInternalError(err)
}

// compensate runs undo after the second half of a two-sided update failed.
func compensate(ctx context.Context, logger *slog.Logger, kind string, undo func() error) {
	err := undo()
	metrics.CompensationsTotal.WithLabelValues(kind, metrics.Outcome(err)).Inc()
	if err != nil {
		logger.ErrorContext(ctx, "compensating update failed", "kind", kind, "error", err)
	}
}
