package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	FalAPIKey          string
	FalBaseURL         string
	AdminPassword      string
	AppPassword        string
	AllowOpenAccess    bool
	SessionSecret      string
	PresetDir          string
	QuotaLimit         int
	QuotaWindow        time.Duration
	MaxUploadImages    int
	MaxImageDimension  int
	GenerateTimeout    time.Duration
	GeoIPDBPath        string
	CORSAllowedOrigins []string
	LoginRateLimit     int
	LoginRateWindow    time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		FalAPIKey:          strings.TrimSpace(os.Getenv("FAL_KEY")),
		FalBaseURL:         getEnv("FAL_BASE_URL", "https://fal.run"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		AppPassword:        os.Getenv("APP_PASSWORD"),
		AllowOpenAccess:    getEnvBool("ALLOW_OPEN_ACCESS", false),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		PresetDir:          getEnv("PRESET_DIR", "assets/presets"),
		QuotaLimit:         getEnvInt("QUOTA_LIMIT", 5),
		QuotaWindow:        time.Second * time.Duration(getEnvInt("QUOTA_WINDOW_SECONDS", 3600)),
		MaxUploadImages:    getEnvInt("MAX_UPLOAD_IMAGES", 6),
		MaxImageDimension:  getEnvInt("MAX_IMAGE_DIMENSION", 1024),
		GenerateTimeout:    time.Second * time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 120)),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LoginRateLimit:     getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow:    time.Second * time.Duration(getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.FalAPIKey == "" {
		return nil, fmt.Errorf("FAL_KEY is required")
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	// Running without any password is an explicit opt-in, never a silent
	// fallback: an unconfigured gate would otherwise fail open.
	if cfg.AdminPassword == "" && cfg.AppPassword == "" && !cfg.AllowOpenAccess {
		return nil, fmt.Errorf("no ADMIN_PASSWORD or APP_PASSWORD configured; set ALLOW_OPEN_ACCESS=true to run without a gate")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
