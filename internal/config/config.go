// Package config loads process configuration from the environment. Values are
// read once at startup; a .env file is honored in development via godotenv.
package config

import (
	"fmt"
	"os"
)

// Config holds everything the server and the admin CLI need to run. Optional
// integrations (Redis, Telegram, Brevo) stay disabled when their variables are
// unset.
type Config struct {
	// HTTP
	Port       string
	AppBaseURL string // public base URL used in emails and Telegram deep links

	// PostgreSQL
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Auth and encryption
	SecretKey     string
	EncryptionKey string

	// Optional integrations
	RedisAddr        string
	RedisPassword    string
	TelegramBotToken string
	BrevoAPIKey      string
	EmailSender      string

	// Upstream BuzzerBeater API
	BBAPIBaseURL string

	// Cron expressions for background jobs
	ReminderCron   string
	RosterSyncCron string
}

// Load reads the configuration from the environment, applying defaults for
// everything that can reasonably have one.
func Load() Config {
	return Config{
		Port:       getenv("PORT", "8080"),
		AppBaseURL: getenv("APP_BASE_URL", "http://localhost:8080"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "user"),
		DBPassword: getenv("DB_PASSWORD", "password"),
		DBName:     getenv("DB_NAME", "courtsidedb"),

		SecretKey:     os.Getenv("SECRET_KEY"),
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		BrevoAPIKey:      os.Getenv("BREVO_API_KEY"),
		EmailSender:      os.Getenv("SMTP_FROM_EMAIL"),

		BBAPIBaseURL: getenv("BB_API_BASE_URL", "https://bbapi.buzzerbeater.com"),

		ReminderCron:   getenv("REMINDER_CRON", "*/15 * * * *"),
		RosterSyncCron: getenv("ROSTER_SYNC_CRON", "0 12 * * 5"),
	}
}

// DSN renders the PostgreSQL connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
