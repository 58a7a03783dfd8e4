package journeys

import (
	"github.com/gerarddekkers/builder-backend/app/routes/auth"
	"github.com/gofiber/fiber/v2"
)

func SetupJourneyRoutes(app *fiber.App) {
	app.Post("/api/learning-journeys/publish", auth.RequireAccess("journeysTest"), PublishAPI)
	app.Post("/api/learning-journeys/publish-test", auth.RequireAccess("journeysTest"), PublishAPI)
	app.Post("/api/learning-journeys/publish-production", auth.RequireAccess("journeysProd"), PublishProductionAPI)

	app.Get("/api/learning-journeys", ListAPI)
	app.Get("/api/learning-journeys/:id", GetByIdAPI)
	app.Delete("/api/learning-journeys/:id", auth.RequireAccess("journeysTest"), DeleteAPI)
}
