package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/labstack/echo/v4"
)

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation, models.KindConflict:
		return http.StatusBadRequest
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// NewErrorHandler renders every error as {"error": message}. Internal error
// details are only included when exposeInternal is set.
func NewErrorHandler(logger *slog.Logger, exposeInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		var appErr *models.AppError
		var fieldErr *validators.FieldError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = statusFor(appErr.Kind)
			message = appErr.Message
		case errors.As(err, &fieldErr):
			status = http.StatusBadRequest
			message = fieldErr.Message
		case errors.As(err, &httpErr):
			status = httpErr.Code
			message = fmt.Sprint(httpErr.Message)
		}

		if status >= http.StatusInternalServerError {
			if exposeInternal {
				message = err.Error()
			}
			logger.ErrorContext(c.Request().Context(), "request failed",
				"status", status,
				"method", c.Request().Method,
				"path", c.Path(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, models.ErrorResponse{Error: message})
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", "error", err)
		}
	}
}
