package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talenthub/matching-engine/internal/models"
	"talenthub/matching-engine/internal/repositories"
)

type PreferenceHandler struct {
	prefRepo repositories.PreferenceRepository
}

func NewPreferenceHandler(prefRepo repositories.PreferenceRepository) *PreferenceHandler {
	return &PreferenceHandler{
		prefRepo: prefRepo,
	}
}

// HandleGet handles GET /preferences/:userID
func (h *PreferenceHandler) HandleGet(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID format",
		})
	}

	prefs, err := h.prefRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, models.ErrPreferencesNotFound) {
			// Users without stored preferences get the system defaults.
			return c.JSON(models.RecommendationPreferences{
				UserID:          userID,
				WeightOverrides: models.FloatMap(models.DefaultWeights()),
			})
		}
		return errorJSON(c, err)
	}
	return c.JSON(prefs)
}

// HandleUpdate handles PUT /preferences/:userID
func (h *PreferenceHandler) HandleUpdate(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID format",
		})
	}

	var prefs models.RecommendationPreferences
	if err := c.BodyParser(&prefs); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	for name := range prefs.WeightOverrides {
		if !validFactor(name) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown weight factor: " + name,
			})
		}
		if prefs.WeightOverrides[name] < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Weights must be non-negative",
			})
		}
	}

	prefs.UserID = userID
	if prefs.ID == uuid.Nil {
		prefs.ID = uuid.New()
	}

	if err := h.prefRepo.Upsert(&prefs); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  "updated",
		"user_id": userID.String(),
	})
}

func validFactor(name string) bool {
	for _, factor := range models.Factors {
		if factor == name {
			return true
		}
	}
	return false
}
