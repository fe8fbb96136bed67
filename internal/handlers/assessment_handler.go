package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"complyforge/internal/models"
	"complyforge/internal/repositories"
	"complyforge/internal/services"
)

type AssessmentHandler struct {
	repo   repositories.AssessmentRepository
	worker services.Worker
	report services.ReportService
}

func NewAssessmentHandler(
	repo repositories.AssessmentRepository,
	worker services.Worker,
	report services.ReportService,
) *AssessmentHandler {
	return &AssessmentHandler{
		repo:   repo,
		worker: worker,
		report: report,
	}
}

// HandleSubmit handles POST /api/v1/assessments. Validation is the only
// synchronous step; the pipeline itself runs on the worker.
func (h *AssessmentHandler) HandleSubmit(c *fiber.Ctx) error {
	var req models.SubmitAssessmentRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := req.QuestionnaireResponses.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	organizationName := req.OrganizationName
	if organizationName == "" {
		organizationName = fmt.Sprintf("%s (%s)",
			req.QuestionnaireResponses.OrganizationType,
			req.QuestionnaireResponses.Industry)
	}

	assessment := &models.Assessment{
		ID:               uuid.New(),
		OrganizationName: organizationName,
		Status:           models.StatusPending,
		Questionnaire:    req.QuestionnaireResponses,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.repo.Create(assessment); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create assessment",
		})
	}

	h.worker.EnqueueJob(assessment.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.SubmitAssessmentResponse{
		ID:        assessment.ID.String(),
		Status:    string(models.StatusPending),
		StatusURL: fmt.Sprintf("/api/v1/assessments/%s/status", assessment.ID),
	})
}

// HandleGetStatus handles GET /api/v1/assessments/:id/status
func (h *AssessmentHandler) HandleGetStatus(c *fiber.Ctx) error {
	assessment, err := h.findAssessment(c)
	if assessment == nil {
		return err
	}

	return c.JSON(models.AssessmentStatusResponse{
		ID:                    assessment.ID.String(),
		Status:                string(assessment.Status),
		CreatedAt:             assessment.CreatedAt,
		ProcessingTimeSeconds: assessment.ProcessingTimeSeconds,
		ErrorMessage:          assessment.ErrorMessage,
		ComplianceScore:       assessment.ComplianceScore,
	})
}

// HandleGetResult handles GET /api/v1/assessments/:id. The full record is
// only available for completed assessments; failure diagnostics are served by
// the status endpoint instead.
func (h *AssessmentHandler) HandleGetResult(c *fiber.Ctx) error {
	assessment, err := h.findAssessment(c)
	if assessment == nil {
		return err
	}

	if assessment.Status != models.StatusCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  "Assessment results are only available once completed",
			"status": string(assessment.Status),
		})
	}

	return c.JSON(assessment)
}

// HandleGetReport handles GET /api/v1/assessments/:id/report
func (h *AssessmentHandler) HandleGetReport(c *fiber.Ctx) error {
	assessment, err := h.findAssessment(c)
	if assessment == nil {
		return err
	}

	markdown, err := h.report.RenderMarkdown(assessment)
	if err != nil {
		if errors.Is(err, models.ErrNotReady) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":  "Report is only available for completed assessments",
				"status": string(assessment.Status),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render report",
		})
	}

	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.SendString(markdown)
}

// HandleList handles GET /api/v1/assessments
func (h *AssessmentHandler) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	assessments, err := h.repo.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list assessments",
		})
	}

	summaries := make([]models.AssessmentSummary, 0, len(assessments))
	for i := range assessments {
		summaries = append(summaries, models.SummaryOf(&assessments[i]))
	}

	return c.JSON(fiber.Map{
		"assessments": summaries,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *AssessmentHandler) findAssessment(c *fiber.Ctx) (*models.Assessment, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid assessment ID format",
		})
	}

	assessment, err := h.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Assessment not found",
			})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch assessment",
		})
	}

	return assessment, nil
}
