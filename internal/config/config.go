package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Data modes select which backend serves the console.
const (
	DataModeLive   = "live"
	DataModeStatic = "static"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Backend selection
	DataMode        string
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	// Clinic rules
	ClinicTimezone        string
	MinAppointmentMinutes int
	SearchDebounce        time.Duration

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Event outbox and audit trail
	DatabaseURL      string
	OutboxInterval   time.Duration
	OutboxBatchSize  int
	EventsQueueURL   string
	AuditEnabled     bool
	ReceiptsBucket   string
	EmailProvider       string
	SendGridAPIKey      string
	EmailFromAddress    string
	EmailFromName       string
	EmailReplyTo        string
	SESConfigurationSet string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataMode:        strings.ToLower(strings.TrimSpace(getEnv("DATA_MODE", DataModeLive))),
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:5000/api"),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		ClinicTimezone:        getEnv("CLINIC_TIMEZONE", "America/Lima"),
		MinAppointmentMinutes: getEnvAsInt("MIN_APPOINTMENT_MINUTES", 30),
		SearchDebounce:        getEnvAsDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 12*time.Hour),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		OutboxInterval:   getEnvAsDuration("OUTBOX_INTERVAL", 2*time.Second),
		OutboxBatchSize:  getEnvAsInt("OUTBOX_BATCH_SIZE", 25),
		EventsQueueURL:   getEnv("EVENTS_QUEUE_URL", ""),
		AuditEnabled:     getEnvAsBool("AUDIT_ENABLED", true),
		ReceiptsBucket:   getEnv("RECEIPTS_BUCKET", ""),
		EmailProvider:       strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress:    getEnv("EMAIL_FROM", ""),
		EmailFromName:       getEnv("EMAIL_FROM_NAME", "DocSmile Suite"),
		EmailReplyTo:        getEnv("EMAIL_REPLY_TO", ""),
		SESConfigurationSet: getEnv("SES_CONFIGURATION_SET", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
	}
}

// StaticMode reports whether the fixture backend should serve requests.
func (c *Config) StaticMode() bool {
	return c.DataMode == DataModeStatic
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
