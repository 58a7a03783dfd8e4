package translate

import (
	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/gerarddekkers/builder-backend/app/services"
	"github.com/gofiber/fiber/v2"
)

// TranslateAPI batch-translates builder texts. A misconfigured or failing
// provider never breaks the caller: the original texts come back with a
// warning so the editor can fall back to manual translation.
func TranslateAPI(c *fiber.Ctx) error {
	var req models.TranslateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.SourceLanguage == "" {
		req.SourceLanguage = "nl"
	}
	if req.TargetLanguage == "" {
		req.TargetLanguage = "en"
	}
	if len(req.Texts) == 0 {
		return c.JSON(models.TranslateResponse{Translations: []string{}})
	}

	svc := services.NewTranslationService(
		config.AppConfig.TranslateProvider,
		config.AppConfig.GoogleAPIKey,
		config.AppConfig.OpenAIAPIKey,
	)
	translations, warning := svc.Translate(req.SourceLanguage, req.TargetLanguage, req.Texts)
	return c.JSON(models.TranslateResponse{Translations: translations, Warning: warning})
}
