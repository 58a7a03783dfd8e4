package users

import (
	"github.com/gerarddekkers/builder-backend/app/routes/auth"
	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	group := app.Group("/api/admin/users", auth.RequireAdmin)
	group.Get("/", ListAPI)
	group.Post("/", CreateAPI)
	group.Put("/:id", UpdateAPI)
	group.Put("/:id/password", ChangePasswordAPI)
	group.Delete("/:id", DeactivateAPI)
}
