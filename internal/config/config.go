// Package config loads runtime settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	WatchlistPath string
	StateDir      string

	Timezone        string
	QuietStartHour  int
	QuietEndHour    int
	ScanIntervalMin int
	QueryDelaySec   int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	ToEmail      string

	CtlBaseURL string
	CtlPort    int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ChromeBin    string
	GeminiAPIKey string
	GeminiModel  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		WatchlistPath: getEnv("WATCHLIST_PATH", "watchlist.json"),
		StateDir:      getEnv("STATE_DIR", "state"),

		Timezone:        getEnv("TZ_NAME", "America/New_York"),
		QuietStartHour:  getEnvInt("QUIET_START_HOUR", 0),
		QuietEndHour:    getEnvInt("QUIET_END_HOUR", 6),
		ScanIntervalMin: getEnvInt("SCAN_INTERVAL_MIN", 30),
		QueryDelaySec:   getEnvInt("QUERY_DELAY_SEC", 3),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", ""),
		ToEmail:      getEnv("TO_EMAIL", ""),

		CtlBaseURL: getEnv("CTL_BASE_URL", "http://localhost:8787"),
		CtlPort:    getEnvInt("CTL_PORT", 8787),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "cardscout"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "cardscout"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ChromeBin:    getEnv("CHROME_BIN", ""),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}
}

// DSN returns the PostgreSQL connection string. Empty when no host is
// configured, which disables the deal archive.
func (c *Config) DSN() string {
	if c.PostgresHost == "" {
		return ""
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// SeenPath is the seen-listing state file under StateDir.
func (c *Config) SeenPath() string { return filepath.Join(c.StateDir, "seen.json") }

// SoldCachePath is the sold-price cache file under StateDir.
func (c *Config) SoldCachePath() string { return filepath.Join(c.StateDir, "sold_prices.json") }

// QueuePath is the quiet-hours notification queue file under StateDir.
func (c *Config) QueuePath() string { return filepath.Join(c.StateDir, "queued_notifications.json") }

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
