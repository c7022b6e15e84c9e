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
	AppEnv            string
	Port              string
	DatabaseURL       string
	JWTSecret         string
	AdminEmails       []string
	AllowedOrigins    []string
	DefaultLocale     string
	GeoIPDBPath       string
	MidtransServerKey string
	MidtransProd      bool
	CloudinaryCloud   string
	CloudinaryKey     string
	CloudinarySecret  string
	UploadDir         string
	StorageBaseURL    string
	PaymentTimeout    time.Duration
	HTTPReadTimeout   time.Duration
	HTTPIdleTimeout   time.Duration
	RateLimitPerMin   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmails:       splitList(os.Getenv("ADMIN_EMAILS")),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		DefaultLocale:     getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransProd:      getEnv("MIDTRANS_ENV", "sandbox") == "production",
		CloudinaryCloud:   os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:     os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret:  os.Getenv("CLOUDINARY_API_SECRET"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		PaymentTimeout:    time.Second * time.Duration(getEnvInt("PAYMENT_TIMEOUT_SECONDS", 30)),
		// No write timeout knob: the server leaves WriteTimeout unset so
		// live views can hold their streams open.
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}
	cfg.StorageBaseURL = getEnv("STORAGE_BASE_URL", "http://localhost:"+cfg.Port+"/static")

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsAdminEmail reports whether the email is on the configured admin allowlist.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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
