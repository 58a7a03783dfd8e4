package auth

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gofiber/fiber/v2"

	"github.com/gerarddekkers/builder-backend/app/models"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", LoginAPI)
	authGroup.Get("/status", StatusAPI)
}

// openPaths skips the token check: login, status, the health probe and the
// db diagnostics endpoints.
func openPath(path string) bool {
	return path == "/api/auth/login" ||
		path == "/api/auth/status" ||
		path == "/api/health" ||
		strings.HasPrefix(path, "/api/db-")
}

// AuthMiddleware guards every /api route. With auth disabled every request
// runs as an anonymous ADMIN; otherwise a valid Bearer token is required and
// its identity lands in the request locals.
func AuthMiddleware(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodOptions {
		return c.Next()
	}
	if !strings.HasPrefix(c.Path(), "/api/") || openPath(c.Path()) {
		return c.Next()
	}

	if !config.AppConfig.Auth.Enabled {
		c.Locals("userRole", models.RoleAdmin)
		c.Locals("userName", "dev-anonymous")
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or invalid Authorization header"})
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if !ValidateToken(token) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	if role := ExtractRole(token); role != "" {
		c.Locals("userRole", role)
	}
	if username := ExtractUsername(token); username != "" {
		c.Locals("userName", username)
	}
	if userId := ExtractUserId(token); userId != "" {
		c.Locals("userId", userId)
	}
	return c.Next()
}

// RequireAdmin gates the user admin endpoints.
func RequireAdmin(c *fiber.Ctx) error {
	role, _ := c.Locals("userRole").(string)
	if role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Alleen beheerders hebben toegang"})
	}
	return c.Next()
}

// RequireAccess checks the per-user environment flag before a publish. With
// auth disabled the anonymous ADMIN passes.
func RequireAccess(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !config.AppConfig.Auth.Enabled {
			return c.Next()
		}
		userIdStr, _ := c.Locals("userId").(string)
		if userIdStr == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Geen toegang"})
		}
		userId, err := strconv.ParseInt(userIdStr, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Geen toegang"})
		}
		user, err := database.GetUserByID(config.GetDB(), userId)
		if err != nil {
			slog.Warn("access check failed", "userId", userId, "error", err)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Gebruiker niet gevonden"})
		}

		allowed := false
		switch flag {
		case "assessmentTest":
			allowed = user.AccessAssessmentTest
		case "assessmentProd":
			allowed = user.AccessAssessmentProd
		case "journeysTest":
			allowed = user.AccessJourneysTest
		case "journeysProd":
			allowed = user.AccessJourneysProd
		}
		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Geen toegang tot deze omgeving"})
		}
		return c.Next()
	}
}
