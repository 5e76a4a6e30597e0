package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultModelID is the Bedrock model used when BEDROCK_MODEL_ID is not set
const DefaultModelID = "us.anthropic.claude-sonnet-4-20250514-v1:0"

// DefaultRegion is used when neither BEDROCK_REGION nor AWS_REGION is set
const DefaultRegion = "us-east-1"

// Config holds all configuration for the application
type Config struct {
	Environment string `validate:"required"`
	Port        string `validate:"required,numeric"`
	Logging     LoggingConfig
	Bedrock     BedrockConfig
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `validate:"required,oneof=trace debug info warn warning error fatal panic"`
	Format string `validate:"required,oneof=json text"`
}

// BedrockConfig holds inference service configuration
type BedrockConfig struct {
	ModelID string `validate:"required"`
	Region  string `validate:"required"`
	// ReuseClient resolves AWS configuration once and shares the client
	// across requests instead of building one per request.
	ReuseClient bool
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8081")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("BEDROCK_MODEL_ID", DefaultModelID)
	v.SetDefault("BEDROCK_REUSE_CLIENT", false)

	region := v.GetString("BEDROCK_REGION")
	if region == "" {
		region = GetEnv("AWS_REGION", DefaultRegion)
	}

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Bedrock: BedrockConfig{
			ModelID:     v.GetString("BEDROCK_MODEL_ID"),
			Region:      region,
			ReuseClient: v.GetBool("BEDROCK_REUSE_CLIENT"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for missing or malformed values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
