package assessments

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/gerarddekkers/builder-backend/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func publisher() *services.AssessmentPublisher {
	return services.NewAssessmentPublisher(
		config.GetDB(),
		config.GetProdDB(),
		services.NewStorage(config.AppConfig.S3))
}

func parseBuildRequest(c *fiber.Ctx) (*models.AssessmentBuildRequest, error) {
	var req models.AssessmentBuildRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errors.New("Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		var details []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details = append(details, fe.Field()+": "+fe.Tag())
			}
			return nil, errors.New(strings.Join(details, "; "))
		}
		return nil, err
	}
	return &req, nil
}

func publishTo(c *fiber.Ctx, env services.PublishEnvironment) error {
	req, err := parseBuildRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if env == services.EnvProduction {
		slog.Warn("PRODUCTION publish triggered", "assessment", req.AssessmentName)
	}

	result, err := publisher().Publish(c.Context(), req, env)
	if err != nil {
		return publishError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func publishError(c *fiber.Ctx, err error) error {
	var unknownGroups *services.UnknownGroupError
	switch {
	case errors.As(err, &unknownGroups):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrProdNotConfigured),
		errors.Is(err, database.ErrNotConfigured),
		errors.Is(err, database.ErrUrlPatchMissed):
		slog.Error("publish failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.Error("publish unexpected error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func PublishAPI(c *fiber.Ctx) error {
	return publishTo(c, services.EnvTest)
}

func PublishProductionAPI(c *fiber.Ctx) error {
	return publishTo(c, services.EnvProduction)
}

// XmlPreviewAPI renders all four XML documents without touching the database
// or S3.
func XmlPreviewAPI(c *fiber.Ctx) error {
	req, err := parseBuildRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var warnings []string
	resp := models.XmlPreviewResponse{
		QuestionnaireXmlNl: services.GenerateQuestionnaireXml(req, "nl", &warnings),
		QuestionnaireXmlEn: services.GenerateQuestionnaireXml(req, "en", &warnings),
		ReportXmlNl:        services.GenerateReportXml(req, "nl", &warnings),
		ReportXmlEn:        services.GenerateReportXml(req, "en", &warnings),
		Warnings:           warnings,
	}
	return c.JSON(resp)
}

func SearchCompetencesAPI(c *fiber.Ctx) error {
	return searchWith(c, database.SearchCompetences)
}

func SearchCategoriesAPI(c *fiber.Ctx) error {
	return searchWith(c, database.SearchCategories)
}

func SearchGroupsAPI(c *fiber.Ctx) error {
	return searchWith(c, database.SearchGroups)
}

func searchWith(c *fiber.Ctx, search func(database.DBTX, string) ([]models.CompetenceSummary, error)) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return c.JSON([]models.CompetenceSummary{})
	}
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	results, err := search(db, query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if results == nil {
		results = []models.CompetenceSummary{}
	}
	return c.JSON(results)
}
