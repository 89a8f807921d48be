package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ameliecafe/storefront/internal/model"
)

// Config is the application configuration, loaded from a YAML file.
// Flags override Addr and DBPath; everything else lives only here.
type Config struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db"`

	// BaseURL is the externally visible URL of the site, used when building
	// password-reset links and public media URLs.
	BaseURL string `yaml:"base_url"`

	// WhatsAppNumber is the destination of checkout deep links, in
	// international format without the leading plus (e.g. "5549988971552").
	WhatsAppNumber string `yaml:"whatsapp_number"`

	SMTP SMTP `yaml:"smtp"`

	Locations []model.Location `yaml:"locations"`
}

// SMTP holds mail delivery settings. When Host is empty, password-reset
// mails are written to the log instead of being sent.
type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Addr:           ":8080",
		DBPath:         "ameliecafe.sqlite3",
		BaseURL:        "http://localhost:8080",
		WhatsAppNumber: "5549988971552",
	}
}

// Load reads and parses the config file at path, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "ameliecafe.sqlite3"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}

	return cfg, nil
}
