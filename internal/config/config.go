package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Catalog drivers
const (
	CatalogFile  = "file"
	CatalogRedis = "redis"
)

// Config holds the configuration for the Salvô API.
// Environment variables are parsed with the SALVO_ prefix,
// e.g. SALVO_HTTP_PORT, SALVO_CATALOG_PATH.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Catalog snapshot
	CatalogDriver   string `envconfig:"CATALOG_DRIVER" default:"file"`
	CatalogPath     string `envconfig:"CATALOG_PATH" default:"data/sellers/sellers.json"`
	CatalogRedisKey string `envconfig:"CATALOG_REDIS_KEY" default:"catalog:sellers"`

	// Matching
	DefaultRadiusKm float64 `envconfig:"DEFAULT_RADIUS_KM" default:"5.0"`
	ResultLimit     int     `envconfig:"RESULT_LIMIT" default:"3"`

	// Redis (sessions, dedupe, daily stats)
	RedisAddr  string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"30m"`

	// Analytics
	KafkaBroker     string `envconfig:"KAFKA_BROKER" default:""`
	AnalyticsTopic  string `envconfig:"ANALYTICS_TOPIC" default:"salvo.search.events"`
	AnalyticsDir    string `envconfig:"ANALYTICS_DIR" default:"data/analytics"`
	ProjectorsGroup string `envconfig:"PROJECTORS_GROUP" default:"salvo-projectors"`

	// WhatsApp Business API
	WhatsAppBaseURL       string `envconfig:"WHATSAPP_BASE_URL" default:"https://graph.facebook.com/v18.0"`
	WhatsAppToken         string `envconfig:"WHATSAPP_TOKEN" default:""`
	WhatsAppVerifyToken   string `envconfig:"WHATSAPP_VERIFY_TOKEN" default:"salvo-verify-token"`
	WhatsAppPhoneNumberID string `envconfig:"WHATSAPP_PHONE_NUMBER_ID" default:""`

	// Webhook fan-out
	Workers int `envconfig:"WORKERS" default:"8"`
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	switch c.CatalogDriver {
	case CatalogFile, CatalogRedis:
	default:
		return fmt.Errorf("unsupported CATALOG_DRIVER: %s", c.CatalogDriver)
	}
	if c.DefaultRadiusKm <= 0 {
		return fmt.Errorf("DEFAULT_RADIUS_KM must be positive, got %v", c.DefaultRadiusKm)
	}
	if c.ResultLimit <= 0 {
		return fmt.Errorf("RESULT_LIMIT must be positive, got %d", c.ResultLimit)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}

// New creates a new Config by parsing environment variables.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SALVO", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("catalog_driver", cfg.CatalogDriver).
		Str("catalog_path", cfg.CatalogPath).
		Float64("default_radius_km", cfg.DefaultRadiusKm).
		Int("result_limit", cfg.ResultLimit).
		Bool("kafka_enabled", cfg.KafkaBroker != "").
		Bool("whatsapp_configured", cfg.WhatsAppConfigured()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:         EnvTesting,
		LogLevel:            "debug",
		HTTPPort:            8080,
		CatalogDriver:       CatalogFile,
		CatalogPath:         "testdata/sellers.json",
		CatalogRedisKey:     "catalog:sellers",
		DefaultRadiusKm:     5.0,
		ResultLimit:         3,
		RedisAddr:           "localhost:6379",
		SessionTTL:          30 * time.Minute,
		AnalyticsTopic:      "salvo.search.events",
		AnalyticsDir:        "testdata/analytics",
		ProjectorsGroup:     "salvo-projectors",
		WhatsAppBaseURL:     "http://localhost:9999",
		WhatsAppVerifyToken: "salvo-verify-token",
		Workers:             2,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// WhatsAppConfigured reports whether outbound messages can be sent.
func (c *Config) WhatsAppConfigured() bool {
	return c.WhatsAppToken != "" && c.WhatsAppPhoneNumberID != ""
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
