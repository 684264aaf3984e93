package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port             string
	DBConn           string
	LogLevel         string
	JWTSecret        string
	CaptureURL       string
	BookValueURL     string
	ChangeChannel    string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SenderEmail      string
	DigestRecipients []string
	DigestSchedule   string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBConn:         getEnv("DB_CONN", "host=localhost port=5432 user=dealer password=dealer dbname=dealer sslmode=disable"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		CaptureURL:     getEnv("CAPTURE_URL", "http://localhost:9090/api"),
		BookValueURL:   getEnv("BOOK_VALUE_URL", "https://valuation.example.com/lookup"),
		ChangeChannel:  getEnv("CHANGE_CHANNEL", "dealer_changes"),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "reports@hdmotors.example.com"),
		DigestSchedule: getEnv("DIGEST_SCHEDULE", "0 18 * * *"),
	}

	if recipients := getEnv("DIGEST_RECIPIENTS", ""); recipients != "" {
		for _, r := range strings.Split(recipients, ",") {
			if r = strings.TrimSpace(r); r != "" {
				cfg.DigestRecipients = append(cfg.DigestRecipients, r)
			}
		}
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.CaptureURL == "" {
		return nil, fmt.Errorf("CAPTURE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
