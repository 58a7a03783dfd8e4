package projects

import (
	"github.com/gofiber/fiber/v2"
)

func SetupProjectRoutes(app *fiber.App) {
	group := app.Group("/api/projects")
	group.Get("/", ListAPI)
	group.Get("/:id", GetAPI)
	group.Put("/:id", SaveAPI)
	group.Delete("/:id", DeleteAPI)
}
