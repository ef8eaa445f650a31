package config

import (
	"os"
	"strconv"
	"time"

	"pdf-extract-api/internal/service"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort        string
	LogLevel          string
	MaxRequestSize    int64
	VertexProjectID   string
	VertexLocation    string
	ModelName         string
	GroupSize         int
	CacheMaxDocuments int
	GroupBackoff      time.Duration
	HeaderBackoffUnit time.Duration
	PageInterval      time.Duration
}

// NewConfig creates a new configuration instance with default values
func NewConfig() *AppConfig {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort: getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
		// Base64 payloads inflate raw documents by a third; the cap applies
		// to the encoded request body.
		MaxRequestSize:    getEnvInt64OrDefault("MAX_REQUEST_SIZE", 100*1024*1024), // 100MB default
		VertexProjectID:   getEnvOrDefault("GCP_PROJECT_ID", ""),
		VertexLocation:    getEnvOrDefault("GCP_LOCATION", "us-central1"),
		ModelName:         getEnvOrDefault("MODEL_NAME", "gemini-2.0-flash"),
		GroupSize:         getEnvIntOrDefault("GROUP_SIZE", service.DefaultGroupSize),
		CacheMaxDocuments: getEnvIntOrDefault("CACHE_MAX_DOCUMENTS", service.DefaultCacheMaxDocuments),
		GroupBackoff:      getEnvDurationOrDefault("GROUP_RETRY_BACKOFF", service.DefaultGroupBackoff),
		HeaderBackoffUnit: getEnvDurationOrDefault("HEADER_RETRY_BACKOFF_UNIT", service.DefaultHeaderBackoffUnit),
		PageInterval:      getEnvDurationOrDefault("TABLE_PAGE_INTERVAL", 15*time.Second),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetMaxRequestSize returns the maximum allowed request body size
func (c *AppConfig) GetMaxRequestSize() int64 {
	return c.MaxRequestSize
}

// GetVertexProjectID returns the GCP project hosting the inference backend
func (c *AppConfig) GetVertexProjectID() string {
	return c.VertexProjectID
}

// GetVertexLocation returns the GCP region of the inference backend
func (c *AppConfig) GetVertexLocation() string {
	return c.VertexLocation
}

// GetModelName returns the generative model identifier
func (c *AppConfig) GetModelName() string {
	return c.ModelName
}

// Tuning returns the pipeline timing knobs derived from the environment.
func (c *AppConfig) Tuning() service.Tuning {
	return service.Tuning{
		GroupSize:         c.GroupSize,
		GroupBackoff:      c.GroupBackoff,
		HeaderBackoffUnit: c.HeaderBackoffUnit,
		PageInterval:      c.PageInterval,
	}
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
