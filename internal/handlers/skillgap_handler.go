package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talenthub/matching-engine/internal/models"
	"talenthub/matching-engine/internal/repositories"
	"talenthub/matching-engine/internal/services"
)

type SkillGapHandler struct {
	entityRepo repositories.EntityRepository
	skillGap   services.SkillGapService
}

func NewSkillGapHandler(
	entityRepo repositories.EntityRepository,
	skillGap services.SkillGapService,
) *SkillGapHandler {
	return &SkillGapHandler{
		entityRepo: entityRepo,
		skillGap:   skillGap,
	}
}

// HandleSkillGap handles POST /skill-gap. The target is either a specific
// job's required skills or a named role's canonical skill set.
func (h *SkillGapHandler) HandleSkillGap(c *fiber.Ctx) error {
	var req models.SkillGapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.CandidateID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "candidate_id is required",
		})
	}
	if req.TargetJobID == "" && req.TargetRole == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "target_job_id or target_role is required",
		})
	}

	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate_id format",
		})
	}
	candidate, err := h.entityRepo.FindByID(candidateID)
	if err != nil {
		return errorJSON(c, err)
	}

	if req.TargetJobID != "" {
		jobID, err := uuid.Parse(req.TargetJobID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid target_job_id format",
			})
		}
		job, err := h.entityRepo.FindByID(jobID)
		if err != nil {
			return errorJSON(c, err)
		}
		report := h.skillGap.Analyze(candidate.Skills.Names(), job.Skills, req.IncludeResources)
		return c.JSON(report)
	}

	report, err := h.skillGap.AnalyzeRole(candidate.Skills.Names(), req.TargetRole, req.IncludeResources)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}
