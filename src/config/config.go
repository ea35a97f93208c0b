package config

import (
	"fmt"
	"os"

	"fincharts-viewer/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Credentials come from the environment when present (.env friendly)
	config.applyEnvOverrides()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyEnvOverrides loads .env (if any) and overlays provider credentials.
func (c *Config) applyEnvOverrides() {
	// Missing .env is not an error; plain environment variables still apply.
	_ = godotenv.Load()

	if v := os.Getenv("FINCHARTS_USERNAME"); v != "" {
		c.Fincharts.Username = v
	}
	if v := os.Getenv("FINCHARTS_PASSWORD"); v != "" {
		c.Fincharts.Password = v
	}
	if v := os.Getenv("FINCHARTS_REST_URI"); v != "" {
		c.Fincharts.RestURI = v
	}
	if v := os.Getenv("FINCHARTS_WS_URI"); v != "" {
		c.Fincharts.WsURI = v
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Fincharts provider configuration
	if c.Fincharts.RestURI == "" {
		return fmt.Errorf("fincharts rest_uri cannot be empty")
	}
	if c.Fincharts.WsURI == "" {
		return fmt.Errorf("fincharts ws_uri cannot be empty")
	}
	if c.Fincharts.Username == "" || c.Fincharts.Password == "" {
		return fmt.Errorf("fincharts credentials must be provided (config or FINCHARTS_USERNAME/FINCHARTS_PASSWORD)")
	}
	if c.Fincharts.Provider == "" {
		return fmt.Errorf("fincharts provider tag cannot be empty")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
