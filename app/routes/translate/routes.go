package translate

import (
	"github.com/gofiber/fiber/v2"
)

func SetupTranslateRoutes(app *fiber.App) {
	app.Post("/api/translate", TranslateAPI)
}
