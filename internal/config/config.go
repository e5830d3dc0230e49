package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	CORSOrigins []string
	BcryptCost  int
	LogLevel    string

	CookieSecure bool

	PreviewPageLimit  int
	PreviewSlideLimit int

	StorageDriver   string
	StorageLocalDir string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PresignTTL    time.Duration

	RedisURL           string
	LoginRatePerMinute int
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Load reads configuration from the environment and validates what the HTTP server needs.
func Load() (Config, error) {
	cfg := load()
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	switch cfg.StorageDriver {
	case StorageLocal:
	case StorageS3:
		if cfg.S3Bucket == "" {
			return Config{}, errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return cfg, nil
}

// LoadForCLI reads configuration for the admin tooling, which only talks to the database.
func LoadForCLI() (Config, error) {
	cfg := load()
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func load() Config {
	return Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		Env:         strings.ToLower(fallback(os.Getenv("APP_ENV"), "production")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "elearn-backend"),
		JWTTTL:      time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 24*60)) * time.Minute,
		CORSOrigins: parseCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		BcryptCost:  positiveInt(os.Getenv("BCRYPT_COST"), 12),
		LogLevel:    strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),

		CookieSecure: parseBool(os.Getenv("COOKIE_SECURE"), true),

		PreviewPageLimit:  positiveInt(os.Getenv("PREVIEW_PAGE_LIMIT"), 3),
		PreviewSlideLimit: positiveInt(os.Getenv("PREVIEW_SLIDE_LIMIT"), 5),

		StorageDriver:   strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), StorageLocal)),
		StorageLocalDir: fallback(os.Getenv("STORAGE_LOCAL_DIR"), "./uploads"),
		S3Bucket:        strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:        fallback(os.Getenv("S3_REGION"), "us-east-1"),
		S3Endpoint:      strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey:     strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		S3PresignTTL:    time.Duration(positiveInt(os.Getenv("S3_PRESIGN_MINUTES"), 15)) * time.Minute,

		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		LoginRatePerMinute: positiveInt(os.Getenv("LOGIN_RATE_PER_MINUTE"), 10),
	}
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Development reports whether internal error detail may be exposed to clients.
func (c Config) Development() bool {
	return c.Env == "development" || c.Env == "dev"
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseBool(value string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return b
}

// parseCSV splits a comma-separated list, dropping blanks. An empty input
// yields no entries.
func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
