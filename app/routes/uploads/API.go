package uploads

import (
	"path/filepath"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/gerarddekkers/builder-backend/app/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	maxDocumentSize = 25 * 1024 * 1024
	maxImageSize    = 10 * 1024 * 1024
)

var allowedDocumentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint":                                     true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedImageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// DocumentUploadAPI stores a journey document on S3 and returns its public url.
// Files for a journey that has not been published yet land under _draft.
func DocumentUploadAPI(c *fiber.Ctx) error {
	return handleUpload(c, "docs", allowedDocumentTypes, maxDocumentSize,
		"Ongeldig bestandstype. Toegestaan: PDF, Word, Excel, PowerPoint, afbeeldingen",
		"Bestand te groot (max 25 MB)", true)
}

func ImageUploadAPI(c *fiber.Ctx) error {
	return handleUpload(c, "images", allowedImageTypes, maxImageSize,
		"Ongeldig bestandstype. Toegestaan: JPEG, PNG, GIF, WebP, SVG",
		"Bestand te groot (max 10 MB)", false)
}

func handleUpload(c *fiber.Ctx, folder string, allowed map[string]bool, maxSize int64, typeError, sizeError string, includeFileName bool) error {
	storage := services.NewStorage(config.AppConfig.S3)
	if storage == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "S3 upload is niet geconfigureerd"})
	}

	file, err := c.FormFile("file")
	if err != nil || file.Size == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Geen bestand geselecteerd"})
	}

	contentType := file.Header.Get("Content-Type")
	if !allowed[contentType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": typeError})
	}
	if file.Size > maxSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": sizeError})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Upload mislukt"})
	}
	defer src.Close()

	journeyFolder := c.FormValue("journeyId")
	if journeyFolder == "" {
		journeyFolder = "_draft"
	}
	ext := filepath.Ext(file.Filename)
	key := storage.Prefix() + "/learning-journeys/" + journeyFolder + "/" + folder + "/" + uuid.NewString() + ext

	if err := storage.UploadPublicFile(c.Context(), key, src, file.Size, contentType); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Upload mislukt"})
	}

	url := storage.BuildUrl(key)
	if includeFileName {
		fileName := file.Filename
		if fileName == "" {
			fileName = filepath.Base(key)
		}
		return c.JSON(fiber.Map{"url": url, "fileName": fileName})
	}
	return c.JSON(fiber.Map{"url": url})
}
