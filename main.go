package main

import (
	"log"
	"log/slog"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/routes/assessments"
	"github.com/gerarddekkers/builder-backend/app/routes/auth"
	"github.com/gerarddekkers/builder-backend/app/routes/definitions"
	"github.com/gerarddekkers/builder-backend/app/routes/health"
	"github.com/gerarddekkers/builder-backend/app/routes/journeys"
	"github.com/gerarddekkers/builder-backend/app/routes/projects"
	"github.com/gerarddekkers/builder-backend/app/routes/translate"
	"github.com/gerarddekkers/builder-backend/app/routes/uploads"
	"github.com/gerarddekkers/builder-backend/app/routes/users"
	"github.com/gerarddekkers/builder-backend/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func apiErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func main() {
	logger.InitLogger()
	config.Init()

	if db := config.GetDB(); db != nil {
		defer db.Close()
		if err := database.RunMigrations(db); err != nil {
			log.Fatal("Failed to run migrations: ", err)
		}
		if err := database.SeedAdminUser(db, config.AppConfig.Auth.Password); err != nil {
			slog.Warn("admin seed failed", "error", err)
		}
	}
	if db := config.GetProdDB(); db != nil {
		defer db.Close()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: apiErrorHandler,
		BodyLimit:    30 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:5173, http://localhost:5174, https://builder.mentes.me, https://builder-prod.mentes.me",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(auth.AuthMiddleware)

	auth.SetupAuthRoutes(app)
	health.SetupHealthRoutes(app)
	assessments.SetupAssessmentRoutes(app)
	journeys.SetupJourneyRoutes(app)
	definitions.SetupDefinitionRoutes(app)
	projects.SetupProjectRoutes(app)
	users.SetupUserRoutes(app)
	uploads.SetupUploadRoutes(app)
	translate.SetupTranslateRoutes(app)

	slog.Info("Builder backend starting", "addr", ":8080")
	log.Fatal(app.Listen(":8080"))
}
