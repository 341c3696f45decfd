package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/analyzer"
	"github.com/i474232898/lawn-tracker/internal/geo"
	"github.com/i474232898/lawn-tracker/internal/records"
	"github.com/i474232898/lawn-tracker/internal/soil"
	"github.com/i474232898/lawn-tracker/internal/weather"
)

// ErrorHandler is the centralized Fiber error handler without logging.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return NewErrorHandler(nil)(c, err)
}

// NewErrorHandler returns the centralized Fiber error handler. Domain errors
// are mapped to status codes. Server-side failures answer with the status
// text and the underlying error is only logged; client errors and messages
// written by the handlers themselves are returned as is.
func NewErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")
	return func(c *fiber.Ctx, err error) error {
		status := StatusFor(err)
		message := err.Error()

		var fe *fiber.Error
		if status >= fiber.StatusInternalServerError && !errors.As(err, &fe) {
			logger.Error("Request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
			message = utils.StatusMessage(status)
		}
		return c.Status(status).JSON(fiber.Map{
			"error":   true,
			"message": message,
		})
	}
}

// StatusFor maps an error returned by a handler to its HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	var ae *analyzer.Error
	if errors.As(err, &ae) {
		switch ae.Type {
		case analyzer.ErrorTypeUnsupportedFormat:
			return fiber.StatusUnsupportedMediaType
		case analyzer.ErrorTypeParse:
			return fiber.StatusUnprocessableEntity
		case analyzer.ErrorTypeRateLimited:
			return fiber.StatusTooManyRequests
		default:
			return fiber.StatusBadGateway
		}
	}

	switch {
	case errors.Is(err, records.ErrInvalid),
		errors.Is(err, soil.ErrNoValues),
		errors.Is(err, geo.ErrInvalidCoordinates):
		return fiber.StatusBadRequest
	case errors.Is(err, records.ErrNotFound),
		errors.Is(err, geo.ErrNotFound),
		errors.Is(err, weather.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, weather.ErrAuthFailure),
		errors.Is(err, weather.ErrProviderFailure),
		errors.Is(err, weather.ErrNoProviders):
		return fiber.StatusBadGateway
	case errors.Is(err, geo.ErrNotConfigured):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}
