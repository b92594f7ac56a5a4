package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"talenthub/matching-engine/internal/models"
	"talenthub/matching-engine/internal/services"
)

type FeedbackHandler struct {
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

// HandleSubmit handles POST /feedback
func (h *FeedbackHandler) HandleSubmit(c *fiber.Ctx) error {
	var req models.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}
	if req.RecommendationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "recommendation_id is required",
		})
	}

	record, err := h.feedbackService.Submit(&req)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":     record.ID.String(),
		"status": "stored",
	})
}

// HandleSummary handles GET /feedback/summary
func (h *FeedbackHandler) HandleSummary(c *fiber.Ctx) error {
	filter := models.FeedbackFilter{
		UserID:             c.Query("user_id"),
		RecommendationType: models.EntityType(c.Query("recommendation_type")),
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid from date, expected YYYY-MM-DD",
			})
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid to date, expected YYYY-MM-DD",
			})
		}
		filter.To = &t
	}

	summary, err := h.feedbackService.Summarize(filter)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(summary)
}
