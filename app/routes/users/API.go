package users

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/gofiber/fiber/v2"
)

func ListAPI(c *fiber.Ctx) error {
	users, err := database.ListUsers(config.GetDB())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if users == nil {
		users = []models.BuilderUser{}
	}
	return c.JSON(users)
}

func CreateAPI(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Gebruikersnaam is verplicht"})
	}
	if len(req.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Wachtwoord moet minimaal 6 tekens zijn"})
	}
	if req.Role != "" && req.Role != models.RoleAdmin && req.Role != models.RoleBuilder {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Ongeldige rol: " + req.Role + ". Gebruik ADMIN of BUILDER."})
	}

	user, err := database.CreateUser(config.GetDB(), req)
	if err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func UpdateAPI(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Role != nil && *req.Role != models.RoleAdmin && *req.Role != models.RoleBuilder {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Ongeldige rol: " + *req.Role + ". Gebruik ADMIN of BUILDER."})
	}

	user, err := database.UpdateUser(config.GetDB(), id, req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gebruiker niet gevonden"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(user)
}

func ChangePasswordAPI(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}
	var req models.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Wachtwoord moet minimaal 6 tekens zijn"})
	}

	if err := database.ChangeUserPassword(config.GetDB(), id, req.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gebruiker niet gevonden"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"status": "password_changed"})
}

// DeactivateAPI disables the account instead of deleting the row so audit
// fields stay intact.
func DeactivateAPI(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}
	inactive := false
	_, err = database.UpdateUser(config.GetDB(), id, models.UpdateUserRequest{Active: &inactive})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gebruiker niet gevonden"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"status": "deactivated"})
}
