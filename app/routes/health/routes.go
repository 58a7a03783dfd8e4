package health

import (
	"github.com/gofiber/fiber/v2"
)

func SetupHealthRoutes(app *fiber.App) {
	app.Get("/api/health", HealthAPI)
	app.Get("/api/db-questionnaires", QuestionnairesAPI)
	app.Get("/api/db-translations", TranslationsAPI)
	app.Delete("/api/db-cleanup", CleanupAPI)
}
