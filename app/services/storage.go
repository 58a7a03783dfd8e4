package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/minio/minio-go/v7"
)

// Storage wraps the S3 client with the Metro key and URL conventions.
// A nil *Storage means uploads are disabled.
type Storage struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewStorage(cfg config.S3Config) *Storage {
	if !cfg.Enabled {
		return nil
	}
	return &Storage{client: cfg.Client, bucket: cfg.Bucket, prefix: cfg.Prefix}
}

func (s *Storage) Prefix() string {
	return s.prefix
}

// UploadXml stores one XML document under the given key.
func (s *Storage) UploadXml(ctx context.Context, key, xmlContent string) error {
	data := []byte(xmlContent)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/xml; charset=utf-8"})
	if err != nil {
		return err
	}
	slog.Info("uploaded XML", "bucket", s.bucket, "key", key)
	return nil
}

// UploadPublicFile stores an uploaded asset with a public-read ACL and a
// one-year cache lifetime.
func (s *Storage) UploadPublicFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	})
	return err
}

// BuildKey follows the Metro convention {prefix}/{lang}/{type}_{slug}_{LANG}.xml,
// e.g. test/nl/questionnaire_persoonlijk_leiderschap_NL.xml.
func (s *Storage) BuildKey(prefix, language, assessmentName, docType string) string {
	return prefix + "/" + language + "/" + docType + "_" + ToSlug(assessmentName) + "_" + strings.ToUpper(language) + ".xml"
}

// BuildUrl uses the global endpoint without region, as Metro expects.
func (s *Storage) BuildUrl(key string) string {
	return "https://" + s.bucket + ".s3.amazonaws.com/" + key
}

// DeleteObjects is the best-effort rollback of uploaded blobs. Failures are
// logged only; the primary error must keep propagating.
func (s *Storage) DeleteObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		slog.Warn("rolling back S3 upload", "bucket", s.bucket, "key", key)
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			slog.Error("failed to delete S3 object during rollback", "key", key, "error", err)
		}
	}
}

var (
	slugSpecials    = regexp.MustCompile(`[^a-z0-9\s_-]`)
	slugSeparators  = regexp.MustCompile(`[\s-]+`)
	slugUnderscores = regexp.MustCompile(`_+`)
)

// ToSlug makes a URL-safe slug of an assessment name: lowercase, specials
// removed, whitespace and dashes collapsed to single underscores.
func ToSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugSpecials.ReplaceAllString(slug, "")
	slug = slugSeparators.ReplaceAllString(slug, "_")
	slug = slugUnderscores.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "unnamed"
	}
	return slug
}
