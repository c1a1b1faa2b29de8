package config

import (
	"fmt"

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

// Config holds the configuration for the ingestion service.
// Environment variables are parsed from the VAULTS_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Document store: postgres (cloud) or sqlite (local/dev)
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/vaults.db"`

	// Archival blob store: filesystem (local) or azure
	BlobDriver        string `envconfig:"BLOB_DRIVER" default:"filesystem"`
	BlobRoot          string `envconfig:"BLOB_ROOT" default:"./data/archive"`
	AzureBlobEndpoint string `envconfig:"AZURE_BLOB_ENDPOINT" default:""`
	AzureContainer    string `envconfig:"AZURE_CONTAINER" default:"conversation-archive"`

	// Upstream interaction/directory API
	GraphBaseURL string `envconfig:"GRAPH_BASE_URL" default:"https://graph.microsoft.com/v1.0"`

	// OAuth client-credentials flow for outbound calls
	TokenEndpoint string `envconfig:"TOKEN_ENDPOINT" default:""`
	ClientID      string `envconfig:"CLIENT_ID" default:""`
	ClientSecret  string `envconfig:"CLIENT_SECRET" default:""`
	TokenScope    string `envconfig:"TOKEN_SCOPE" default:"https://graph.microsoft.com/.default"`

	// Ingestion tuning
	DefaultTenantID     string `envconfig:"DEFAULT_TENANT_ID" default:"default-tenant"`
	UserPageSize        int    `envconfig:"USER_PAGE_SIZE" default:"999"`
	InteractionPageSize int    `envconfig:"INTERACTION_PAGE_SIZE" default:"100"`
	RetryMaxAttempts    int    `envconfig:"RETRY_MAX_ATTEMPTS" default:"5"`
}

// ResolveDefaults validates driver selections and cross-field requirements.
func (c *Config) ResolveDefaults() error {
	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("VAULTS_POSTGRES_DSN is required when DB_DRIVER=postgres")
	}

	allowedBlob := map[string]bool{"filesystem": true, "azure": true}
	if !allowedBlob[c.BlobDriver] {
		return fmt.Errorf("unsupported BLOB_DRIVER: %s", c.BlobDriver)
	}
	if c.BlobDriver == "azure" && c.AzureBlobEndpoint == "" {
		return fmt.Errorf("VAULTS_AZURE_BLOB_ENDPOINT is required when BLOB_DRIVER=azure")
	}
	return nil
}

// New creates a Config by parsing environment variables.
// Variables are prefixed with VAULTS_, e.g. VAULTS_HTTP_PORT, VAULTS_DB_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("VAULTS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Str("blob_driver", cfg.BlobDriver).
		Str("graph_base_url", cfg.GraphBaseURL).
		Int("port", cfg.HTTPPort).
		Int("user_page_size", cfg.UserPageSize).
		Int("interaction_page_size", cfg.InteractionPageSize).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config suitable for unit tests.
func NewForTesting() *Config {
	return &Config{
		Environment:         EnvTesting,
		HTTPPort:            8080,
		DBDriver:            "sqlite",
		SQLitePath:          ":memory:",
		BlobDriver:          "filesystem",
		BlobRoot:            "",
		GraphBaseURL:        "http://localhost:0",
		DefaultTenantID:     "default-tenant",
		UserPageSize:        999,
		InteractionPageSize: 100,
		RetryMaxAttempts:    5,
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

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
