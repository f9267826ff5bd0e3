package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer  string // Issuer claim for session tokens (default: chatforge-console)
	BaseURL string // Public console URL used in emails and embed snippets

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	DatabaseFile         string        // Path to SQLite database file (default: ./console.db)
	SessionTTL           time.Duration // Session token lifetime (default: 8h)
	InviteTTL            time.Duration // Setup invitation lifetime (default: 168h)
	RecoveryTTL          time.Duration // Deleted-account recovery window (default: 720h)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	// SMTP delivery for invitations and notices. Unset host disables mail.
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// S3-compatible object storage for widget logos. Unset endpoint falls
	// back to in-memory storage (dev only).
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3KeyID     string
	S3Secret    string
	S3PublicURL string

	// NATSURL enables change-hint publishing when set.
	NATSURL string

	// DriveAPIKey enables Google Drive link-sharing checks when set.
	DriveAPIKey string

	// IngestWebhookURL gets poked after source changes so the crawler can
	// re-index promptly.
	IngestWebhookURL string
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("CONSOLE_ISSUER", "chatforge-console"),
		BaseURL:              getEnvOrDefault("CONSOLE_BASE_URL", "http://localhost:8080"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		DatabaseFile:         getEnvOrDefault("CONSOLE_DATABASE_FILE", "console.db"),
		SessionTTL:           getEnvDurationOrDefault("CONSOLE_SESSION_TTL", 8*time.Hour),
		InviteTTL:            getEnvDurationOrDefault("CONSOLE_INVITE_TTL", 168*time.Hour),
		RecoveryTTL:          getEnvDurationOrDefault("CONSOLE_RECOVERY_TTL", 720*time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		SMTPHost: os.Getenv("CONSOLE_SMTP_HOST"),
		SMTPPort: getEnvOrDefault("CONSOLE_SMTP_PORT", "587"),
		SMTPUser: os.Getenv("CONSOLE_SMTP_USER"),
		SMTPPass: os.Getenv("CONSOLE_SMTP_PASS"),
		SMTPFrom: os.Getenv("CONSOLE_SMTP_FROM"),

		S3Endpoint:  os.Getenv("CONSOLE_S3_ENDPOINT"),
		S3Region:    getEnvOrDefault("CONSOLE_S3_REGION", "auto"),
		S3Bucket:    os.Getenv("CONSOLE_S3_BUCKET"),
		S3KeyID:     os.Getenv("CONSOLE_S3_KEY_ID"),
		S3Secret:    os.Getenv("CONSOLE_S3_SECRET"),
		S3PublicURL: os.Getenv("CONSOLE_S3_PUBLIC_URL"),

		NATSURL:          os.Getenv("CONSOLE_NATS_URL"),
		DriveAPIKey:      os.Getenv("CONSOLE_DRIVE_API_KEY"),
		IngestWebhookURL: os.Getenv("CONSOLE_INGEST_WEBHOOK_URL"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	return defaultValue
}
