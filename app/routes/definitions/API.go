package definitions

import (
	"strconv"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/gerarddekkers/builder-backend/app/services"
	"github.com/gofiber/fiber/v2"
)

type composeRequest struct {
	QuestionnaireIds []int64 `json:"questionnaireIds"`
}

// ListAPI backs the assessment picker in the definition editor.
func ListAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	limit := c.QueryInt("limit", 50)
	if limit > 100 {
		limit = 100
	}
	list, err := database.ListQuestionnairesForPicker(db, c.Query("q"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if list == nil {
		list = []models.QuestionnaireListItem{}
	}
	return c.JSON(list)
}

func ExportAPI(c *fiber.Ctx) error {
	questionnaireId, err := strconv.ParseInt(c.Params("questionnaireId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid questionnaire id"})
	}
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	def, err := services.NewDefinitionService(db).ExportDefinition(questionnaireId)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if def == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Questionnaire not found"})
	}
	return c.JSON(def)
}

// GroupsAPI returns the group ids a questionnaire is currently published to,
// so a re-publish pre-selects them.
func GroupsAPI(c *fiber.Ctx) error {
	questionnaireId, err := strconv.ParseInt(c.Params("questionnaireId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid questionnaire id"})
	}
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	ids, err := database.FindGroupsForQuestionnaire(db, questionnaireId)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if ids == nil {
		ids = []int64{}
	}
	return c.JSON(ids)
}

func ComposeAPI(c *fiber.Ctx) error {
	var req composeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.QuestionnaireIds) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "At least 2 questionnaire ids are required"})
	}
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	def, err := services.NewDefinitionService(db).ComposeDefinitions(req.QuestionnaireIds)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(def)
}
