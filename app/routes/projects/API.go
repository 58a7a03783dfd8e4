package projects

import (
	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/gofiber/fiber/v2"
)

type saveProjectRequest struct {
	Name        string `json:"name"`
	ProjectData string `json:"projectData"`
	CurrentStep int    `json:"currentStep"`
}

func ListAPI(c *fiber.Ctx) error {
	list, err := database.ListProjects(config.GetDB())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if list == nil {
		list = []models.BuilderProject{}
	}
	return c.JSON(list)
}

func GetAPI(c *fiber.Ctx) error {
	project, err := database.GetProjectByID(config.GetDB(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if project == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	return c.JSON(project)
}

// SaveAPI upserts a draft under the client-chosen id.
func SaveAPI(c *fiber.Ctx) error {
	var req saveProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	username, _ := c.Locals("userName").(string)
	if username == "" {
		username = "unknown"
	}
	project := models.BuilderProject{
		ID:          c.Params("id"),
		Name:        req.Name,
		ProjectData: req.ProjectData,
		CurrentStep: req.CurrentStep,
	}
	if err := database.SaveProject(config.GetDB(), project, username); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"status": "saved", "id": project.ID})
}

func DeleteAPI(c *fiber.Ctx) error {
	deleted, err := database.DeleteProject(config.GetDB(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
