package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabaseURL        string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Booking rules
	BookingTimezone          string
	BookingAllowReactivation bool

	// Per-practitioner slot lock (optional, Redis backed)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SlotLockTTL   time.Duration

	// Payment gateway (Asaas compatible)
	GatewayBaseURL      string
	GatewayAPIToken     string
	GatewayWebhookToken string
	GatewayTimeout      time.Duration
	GatewaySynchronous  bool

	// Session tokens issued by the auth service
	SessionJWTSecret string

	// Booking events outbox -> SQS
	AWSRegion             string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	AWSEndpointOverride   string
	BookingEventsQueueURL string
	OutboxPollInterval    time.Duration
}

// Load reads configuration from environment variables. When DOTENV_PATH is
// set (or a .env file exists in the working directory) it is loaded first;
// variables already present in the environment win.
func Load() *Config {
	loadDotEnv()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),

		BookingTimezone:          getEnv("BOOKING_TIMEZONE", "UTC"),
		BookingAllowReactivation: getEnvAsBool("BOOKING_ALLOW_REACTIVATION", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SlotLockTTL:   getEnvAsDuration("SLOT_LOCK_TTL", 10*time.Second),

		GatewayBaseURL:      getEnv("GATEWAY_BASE_URL", "https://api-sandbox.asaas.com"),
		GatewayAPIToken:     getEnv("GATEWAY_API_TOKEN", ""),
		GatewayWebhookToken: getEnv("GATEWAY_WEBHOOK_TOKEN", ""),
		GatewayTimeout:      getEnvAsDuration("GATEWAY_TIMEOUT", 15*time.Second),
		GatewaySynchronous:  getEnvAsBool("GATEWAY_SYNCHRONOUS", false),

		SessionJWTSecret: getEnv("SESSION_JWT_SECRET", ""),

		AWSRegion:             getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:   getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		BookingEventsQueueURL: getEnv("BOOKING_EVENTS_QUEUE_URL", ""),
		OutboxPollInterval:    getEnvAsDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
	}
}

// Location resolves BookingTimezone, falling back to UTC for unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BookingTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func loadDotEnv() {
	if path := os.Getenv("DOTENV_PATH"); path != "" {
		_ = godotenv.Load(path)
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
