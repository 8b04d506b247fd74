package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort    string
	PostgresDSN string

	JWTSecret      string
	AccessTokenTTL time.Duration

	GeminiAPIKey string
	GeminiModel  string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
	BillingSuccessURL   string
	BillingCancelURL    string

	GoogleCredentialsFile string
	GoogleTokenFile       string
	CalendarSyncInterval  time.Duration
	CalendarSyncHorizon   time.Duration

	RedisAddr       string
	RateLimitPerMin int
}

// Load reads configuration from the environment. Only the database DSN and
// the JWT secret are hard requirements; every integration degrades to "off"
// when its keys are absent.
func Load() *Config {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		PostgresDSN: getEnv("DATABASE_URL", ""),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", 30*24*time.Hour),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceID:       getEnv("STRIPE_PRICE_ID", ""),
		BillingSuccessURL:   getEnv("BILLING_SUCCESS_URL", "http://localhost:3000/billing/success"),
		BillingCancelURL:    getEnv("BILLING_CANCEL_URL", "http://localhost:3000/billing/cancel"),

		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credential.json"),
		GoogleTokenFile:       getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		CalendarSyncInterval:  getDuration("CALENDAR_SYNC_INTERVAL", 15*time.Minute),
		CalendarSyncHorizon:   getDuration("CALENDAR_SYNC_HORIZON", 30*24*time.Hour),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RateLimitPerMin: getInt("RATE_LIMIT_PER_MIN", 120),
	}

	if cfg.PostgresDSN == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
