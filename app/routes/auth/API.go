package auth

import (
	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/gofiber/fiber/v2"
)

type loginResponse struct {
	Token       string `json:"token"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	UserId      int64  `json:"userId"`
}

// LoginAPI tries the database accounts first. The env-var credentials only
// work as long as no database users exist, so old installs keep working
// until the admin account is seeded.
func LoginAPI(c *fiber.Ctx) error {
	authCfg := config.AppConfig.Auth

	if !authCfg.Enabled {
		return c.JSON(loginResponse{Token: "auth-disabled", Role: models.RoleAdmin, DisplayName: "Developer", UserId: 0})
	}

	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	db := config.GetDB()
	if db != nil {
		user, err := database.AuthenticateUser(db, req.Username, req.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		if user != nil {
			displayName := user.DisplayName
			if displayName == "" {
				displayName = user.Username
			}
			token := GenerateToken(user.ID, user.Username, user.Role)
			return c.JSON(loginResponse{Token: token, Role: user.Role, DisplayName: displayName, UserId: user.ID})
		}

		count, err := database.CountActiveUsers(db)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		if count > 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Onjuiste inloggegevens"})
		}
	}

	if authCfg.Username == req.Username && authCfg.Password != "" && authCfg.Password == req.Password {
		token := GenerateToken(0, req.Username, models.RoleAdmin)
		return c.JSON(loginResponse{Token: token, Role: models.RoleAdmin, DisplayName: req.Username, UserId: 0})
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Onjuiste inloggegevens"})
}

func StatusAPI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"authEnabled": config.AppConfig.Auth.Enabled})
}
