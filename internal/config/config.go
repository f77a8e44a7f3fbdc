package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	SiteURL    string

	// Branding and payment destination
	BrandName   string
	OrderPrefix string
	Currency    string
	WhishPhone  string

	// Transactional email
	AdminEmail   string
	EmailFrom    string
	ResendAPIKey string

	// Storefront catalog
	StorefrontDomain     string
	StorefrontToken      string
	StorefrontAPIVersion string

	RedisAddr string
	OTelHost  string

	SessionKey   []byte
	CSRFKey      []byte
	CookieSecure bool

	JWTSecret         string
	AdminPasswordHash string
	ShutdownTimeout   time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    envOrDefault("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),

		BrandName:   envOrDefault("BRAND_NAME", "Smart Home"),
		OrderPrefix: envOrDefault("ORDER_PREFIX", "SH"),
		Currency:    envOrDefault("DEFAULT_CURRENCY", "USD"),
		WhishPhone:  os.Getenv("WHISH_PHONE"),

		AdminEmail:   os.Getenv("ADMIN_EMAIL"),
		EmailFrom:    os.Getenv("EMAIL_FROM"),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),

		StorefrontDomain:     os.Getenv("SHOPIFY_STORE_DOMAIN"),
		StorefrontToken:      os.Getenv("SHOPIFY_STOREFRONT_TOKEN"),
		StorefrontAPIVersion: envOrDefault("SHOPIFY_API_VERSION", "2024-07"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		OTelHost:  os.Getenv("OTEL_HOST"),

		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		ShutdownTimeout:   envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
	}

	cfg.SiteURL = envOrDefault("SITE_URL", "http://localhost:"+cfg.AppPort)
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = cfg.BrandName + " <orders@localhost>"
	}

	cfg.SessionKey = keyFromEnv("SESSION_KEY")
	cfg.CSRFKey = keyFromEnv("CSRF_KEY")

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

// keyFromEnv decodes a base64 key of at least 32 bytes. Anything else yields
// a random key, which invalidates cookies on every restart.
func keyFromEnv(name string) []byte {
	raw := os.Getenv(name)
	if raw != "" {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err == nil && len(decoded) >= 32 {
			return decoded
		}
	}

	log.Printf("%s missing or shorter than 32 bytes, generating a random key", name)
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("failed to generate %s: %v", name, err)
	}
	return b
}
