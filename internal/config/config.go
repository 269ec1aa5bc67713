package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataFile string
	Timeout  time.Duration
	WorkDir  string

	LogLevel  string
	LogFormat string

	HistoryDriver string
	HistoryDSN    string
	HMACSecret    string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	NotifyTo     []string
}

// NewConfig loads configuration from a .env file, if present, and the environment
func NewConfig() (*Config, error) {
	// A missing .env is normal; variables may come from the environment alone.
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("ZSCORE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ZSCORE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		DataFile:      getEnv("ZSCORE_DATA_FILE", "market.csv"),
		Timeout:       timeout,
		WorkDir:       getEnv("ZSCORE_WORKDIR", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		HistoryDriver: getEnv("HISTORY_DRIVER", "sqlite"),
		HistoryDSN:    getEnv("HISTORY_DSN", ""),
		HMACSecret:    getEnv("HMAC_SECRET", "zscore-local-history"),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "25"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderEmail:   getEnv("SENDER_EMAIL", "zscore@localhost"),
		NotifyTo:      splitList(getEnv("NOTIFY_TO", "")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that flags may have overridden
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("ZSCORE_DATA_FILE is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("ZSCORE_TIMEOUT must be positive, got %s", c.Timeout)
	}
	switch c.HistoryDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported HISTORY_DRIVER: %s", c.HistoryDriver)
	}
	if c.HMACSecret == "" {
		return fmt.Errorf("HMAC_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
