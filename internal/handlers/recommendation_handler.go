package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talenthub/matching-engine/internal/models"
	"talenthub/matching-engine/internal/services"
)

type RecommendationHandler struct {
	recommender  services.RecommenderService
	storage      services.StorageService
	resumeParser services.ResumeParserService
	embedder     services.EmbeddingService
	maxFileSize  int64
}

func NewRecommendationHandler(
	recommender services.RecommenderService,
	storage services.StorageService,
	resumeParser services.ResumeParserService,
	embedder services.EmbeddingService,
	maxFileSize int64,
) *RecommendationHandler {
	return &RecommendationHandler{
		recommender:  recommender,
		storage:      storage,
		resumeParser: resumeParser,
		embedder:     embedder,
		maxFileSize:  maxFileSize,
	}
}

// HandleRecommend handles POST /recommendations
func (h *RecommendationHandler) HandleRecommend(c *fiber.Ctx) error {
	var req models.RecommendationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.SubjectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "subject_id is required",
		})
	}
	if req.CounterpartType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "counterpart_type is required",
		})
	}

	page, err := h.recommender.Recommend(c.UserContext(), &req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(page)
}

// HandleSimilar handles GET /similar/:id
func (h *RecommendationHandler) HandleSimilar(c *fiber.Ctx) error {
	entityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entity ID format",
		})
	}

	limit := c.QueryInt("limit", 0)
	excludeSameCompany := c.QueryBool("exclude_same_company", false)

	page, err := h.recommender.Similar(c.UserContext(), entityID, limit, excludeSameCompany)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(page)
}

// HandleTalentSearch handles POST /talent-search
func (h *RecommendationHandler) HandleTalentSearch(c *fiber.Ctx) error {
	var req models.TalentSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.Query == "" && len(req.Skills) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query or skills is required",
		})
	}

	page, err := h.recommender.TalentSearch(c.UserContext(), &req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(page)
}

// HandleMatchByResume handles POST /recommendations/by-resume. The uploaded
// resume is parsed, embedded into a query vector and discarded.
func (h *RecommendationHandler) HandleMatchByResume(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
		})
	}
	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, err := h.storage.SaveFile(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save resume: %v", err),
		})
	}
	defer h.storage.DeleteFile(filename)

	text, err := h.resumeParser.ExtractText(filePath)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to parse resume: %v", err),
		})
	}

	query, err := h.embedder.GenerateEmbedding(c.UserContext(), text)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to embed resume: %v", err),
		})
	}

	// A resume carries no structured attributes, so rank purely on
	// similarity rather than penalizing jobs for unmatched factors.
	req := &models.TalentSearchRequest{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
		Weights: map[string]float64{
			models.FactorSimilarity:   1,
			models.FactorSkills:       0,
			models.FactorLocation:     0,
			models.FactorExperience:   0,
			models.FactorSalary:       0,
			models.FactorAvailability: 0,
		},
	}
	page, err := h.recommender.RecommendForVector(c.UserContext(), query, models.EntityTypeJob, req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(page)
}
