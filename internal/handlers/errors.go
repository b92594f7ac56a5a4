package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"talenthub/matching-engine/internal/models"
)

// statusFor maps the engine's error taxonomy onto HTTP status codes.
// Degraded-mode fallbacks never surface here; they keep the success shape.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidFilter),
		errors.Is(err, models.ErrInvalidFeedback):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrEntityNotFound),
		errors.Is(err, models.ErrPreferencesNotFound),
		errors.Is(err, models.ErrUnknownRecommendation):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrIndexMismatch):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
