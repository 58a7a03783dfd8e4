package config

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	MetroDB     *sql.DB // test environment, nil when BUILDER_METRO_ENABLED=false
	MetroProdDB *sql.DB // production environment, nil unless BUILDER_METRO_PROD_ENABLED=true

	S3   S3Config
	Auth AuthConfig

	TranslateProvider string // "google" (default) or "openai"
	GoogleAPIKey      string
	OpenAIAPIKey      string
}

type S3Config struct {
	Enabled bool
	Client  *minio.Client
	Bucket  string
	Region  string
	Prefix  string
}

type AuthConfig struct {
	Enabled     bool
	Username    string
	Password    string
	TokenSecret string
}

var AppConfig *Config

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Init loads .env (when present) and binds all BUILDER_* settings.
// The test Metro database is required when metro is enabled; the production
// database and S3 are optional and stay nil/disabled when not configured.
func Init() {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	cfg := &Config{
		Auth: AuthConfig{
			Enabled:     envBool("BUILDER_AUTH_ENABLED", false),
			Username:    env("BUILDER_AUTH_USERNAME", "tester"),
			Password:    os.Getenv("BUILDER_AUTH_PASSWORD"),
			TokenSecret: env("BUILDER_AUTH_TOKEN_SECRET", "changeme-in-production"),
		},
		TranslateProvider: env("BUILDER_TRANSLATE_PROVIDER", "google"),
		GoogleAPIKey:      env("GOOGLE_TRANSLATE_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
	}

	if envBool("BUILDER_METRO_ENABLED", false) {
		db, err := openMetroDB("BUILDER_METRO_DATASOURCE")
		if err != nil {
			log.Fatal("Failed to connect to Metro test database: ", err)
		}
		cfg.MetroDB = db
		slog.Info("Metro test database connected")
	} else {
		slog.Warn("Metro integration disabled; publish endpoints will fail until BUILDER_METRO_ENABLED=true")
	}

	if envBool("BUILDER_METRO_PROD_ENABLED", false) {
		db, err := openMetroDB("BUILDER_METRO_PROD_DATASOURCE")
		if err != nil {
			log.Fatal("Failed to connect to Metro production database: ", err)
		}
		cfg.MetroProdDB = db
		slog.Info("Metro production database connected")
	}

	if envBool("BUILDER_S3_ENABLED", false) {
		region := env("BUILDER_S3_REGION", "eu-west-1")
		client, err := minio.New("s3.amazonaws.com", &minio.Options{
			Creds:  credentials.NewEnvAWS(),
			Secure: true,
			Region: region,
		})
		if err != nil {
			log.Fatal("Failed to create S3 client: ", err)
		}
		cfg.S3 = S3Config{
			Enabled: true,
			Client:  client,
			Bucket:  env("BUILDER_S3_BUCKET", "metro-platform"),
			Region:  region,
			Prefix:  env("BUILDER_S3_PREFIX", "test"),
		}
		slog.Info("S3 uploads enabled", "bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix)
	}

	AppConfig = cfg
}

func openMetroDB(prefix string) (*sql.DB, error) {
	host := env(prefix+"_HOST", "localhost")
	port := env(prefix+"_PORT", "3306")
	user := env(prefix+"_USERNAME", "metro")
	password := os.Getenv(prefix + "_PASSWORD")
	name := env(prefix+"_NAME", "metro")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		user, password, host, port, name)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// GetDB returns the Metro test database, which doubles as the store for the
// builder-owned tables (builder_users, builder_projects).
func GetDB() *sql.DB {
	return AppConfig.MetroDB
}

func GetProdDB() *sql.DB {
	return AppConfig.MetroProdDB
}
