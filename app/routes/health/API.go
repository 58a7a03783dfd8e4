package health

import (
	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gofiber/fiber/v2"
)

func HealthAPI(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}
	if db := config.GetDB(); db != nil {
		if err := db.Ping(); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
		} else {
			status["database"] = "ok"
		}
	} else {
		status["database"] = "not configured"
	}
	return c.JSON(status)
}

// QuestionnairesAPI shows the 30 most recent questionnaires with their group
// bindings and row counts, for verifying a publish landed.
func QuestionnairesAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	list, err := database.ListRecentQuestionnaires(db)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if list == nil {
		list = []database.QuestionnaireOverview{}
	}
	return c.JSON(list)
}

func TranslationsAPI(c *fiber.Ctx) error {
	questionnaireId := int64(c.QueryInt("questionnaireId", 0))
	if questionnaireId <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "questionnaireId is required"})
	}
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	list, err := database.ListQuestionnaireTranslations(db, questionnaireId)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if list == nil {
		list = []database.TranslationRow{}
	}
	return c.JSON(list)
}

// CleanupAPI removes a contiguous id range of test questionnaires. Only for
// cleaning up after publish experiments against the test database.
func CleanupAPI(c *fiber.Ctx) error {
	fromId := int64(c.QueryInt("fromId", 0))
	toId := int64(c.QueryInt("toId", 0))
	if fromId <= 0 || toId < fromId {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "fromId and toId are required, with toId >= fromId"})
	}
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	result, err := database.CleanupQuestionnaireRange(db, fromId, toId)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}
