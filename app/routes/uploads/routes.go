package uploads

import (
	"github.com/gofiber/fiber/v2"
)

func SetupUploadRoutes(app *fiber.App) {
	app.Post("/api/documents/upload", DocumentUploadAPI)
	app.Post("/api/images/upload", ImageUploadAPI)
}
