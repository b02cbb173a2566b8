// Package config loads server configuration from the environment,
// reading a .env file first if one exists.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all server settings.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	DBPath   string `env:"DB_PATH" envDefault:"lostfound.sqlite3"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// SMTP settings for outgoing notifications. When SMTPHost is empty,
	// notifications are logged instead of sent.
	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM" envDefault:"lostfound@campus.local"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env: %w", err)
	}
	return cfg, nil
}
