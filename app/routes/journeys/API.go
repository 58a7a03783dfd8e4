package journeys

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/gerarddekkers/builder-backend/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func publisher() *services.JourneyPublisher {
	return services.NewJourneyPublisher(config.GetDB(), config.GetProdDB())
}

func parsePublishRequest(c *fiber.Ctx) (*models.LearningJourneyPublishRequest, error) {
	var req models.LearningJourneyPublishRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errors.New("Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var details []string
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
	req, err := parsePublishRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if env == services.EnvProduction {
		slog.Warn("PRODUCTION publish triggered", "learningJourney", req.Name)
	}

	result, err := publisher().Publish(c.Context(), req, env)
	if err != nil {
		return publishError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func publishError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		slog.Warn("learning journey validation failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrProdNotConfigured), errors.Is(err, database.ErrNotConfigured):
		slog.Error("learning journey publish failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.Error("learning journey publish unexpected error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func PublishAPI(c *fiber.Ctx) error {
	return publishTo(c, services.EnvTest)
}

func PublishProductionAPI(c *fiber.Ctx) error {
	return publishTo(c, services.EnvProduction)
}

func DeleteAPI(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}
	slog.Warn("deleting learning journey", "id", id)
	if err := publisher().DeleteJourney(c.Context(), id, services.EnvTest); err != nil {
		return publishError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted", "id": strconv.FormatInt(id, 10)})
}

func ListAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	list, err := database.FindAllLearningJourneys(db)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if list == nil {
		list = []models.LearningJourneyListItem{}
	}
	return c.JSON(list)
}

func GetByIdAPI(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}
	db := config.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": database.ErrNotConfigured.Error()})
	}
	detail, err := database.FindLearningJourneyById(db, id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if detail == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Learning journey not found"})
	}
	return c.JSON(detail)
}
