package handlers

import (
	"github.com/gofiber/fiber/v2"

	"complyforge/internal/models"
)

type QuestionsHandler struct{}

func NewQuestionsHandler() *QuestionsHandler {
	return &QuestionsHandler{}
}

// HandleGetQuestions handles GET /api/v1/questions. The questionnaire
// definition is static, so clients can render the form without a database
// round trip.
func (h *QuestionsHandler) HandleGetQuestions(c *fiber.Ctx) error {
	questions := models.Questions()
	return c.JSON(fiber.Map{
		"questions": questions,
		"total":     len(questions),
	})
}
