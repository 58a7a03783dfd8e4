package assessments

import (
	"github.com/gerarddekkers/builder-backend/app/routes/auth"
	"github.com/gofiber/fiber/v2"
)

func SetupAssessmentRoutes(app *fiber.App) {
	app.Post("/api/questionnaires/publish", auth.RequireAccess("assessmentTest"), PublishAPI)
	app.Post("/api/questionnaires/publish-test", auth.RequireAccess("assessmentTest"), PublishAPI)
	app.Post("/api/questionnaires/publish-production", auth.RequireAccess("assessmentProd"), PublishProductionAPI)

	app.Post("/api/assessments/xml-preview", XmlPreviewAPI)

	app.Get("/api/competences", SearchCompetencesAPI)
	app.Get("/api/categories", SearchCategoriesAPI)
	app.Get("/api/groups", SearchGroupsAPI)
}
