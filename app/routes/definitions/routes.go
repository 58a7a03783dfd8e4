package definitions

import (
	"github.com/gofiber/fiber/v2"
)

func SetupDefinitionRoutes(app *fiber.App) {
	app.Get("/api/assessment-definitions", ListAPI)
	app.Get("/api/assessment-definitions/:questionnaireId", ExportAPI)
	app.Get("/api/assessment-definitions/:questionnaireId/groups", GroupsAPI)
	app.Post("/api/assessment-definitions/compose", ComposeAPI)
}
