package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Vector    VectorConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Extractor ExtractorConfig
	Parser    ParserConfig
}

// DatabaseConfig holds relational-store configuration. Driver is either
// "postgres" (pgx pool) or "sqlite" (local file or :memory:).
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// VectorConfig holds vector-store configuration.
type VectorConfig struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

// LLMConfig holds generation-service configuration.
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// EmbeddingConfig holds embedding-service configuration.
type EmbeddingConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ExtractorConfig holds table-extraction-service configuration.
type ExtractorConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ParserConfig selects the response-parsing strategy: "line-filter" or "sentinel".
type ParserConfig struct {
	Strategy string
	TopK     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_URL", "data.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Vector: VectorConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "nlprice"),
			Dimension:  getEnvAsInt("QDRANT_DIMENSION", 1536),
			Timeout:    getEnvAsDuration("QDRANT_TIMEOUT", 15*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 500),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Embedding: EmbeddingConfig{
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			Timeout: getEnvAsDuration("EMBEDDING_TIMEOUT", 30*time.Second),
		},
		Extractor: ExtractorConfig{
			BaseURL: getEnv("EXTRACTOR_URL", "http://localhost:8070"),
			Timeout: getEnvAsDuration("EXTRACTOR_TIMEOUT", 60*time.Second),
		},
		Parser: ParserConfig{
			Strategy: getEnv("PARSER_STRATEGY", "line-filter"),
			TopK:     getEnvAsInt("QUERY_TOP_K", 10),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration. Missing credentials are a startup
// failure, never a mid-request one.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrConfigMissing)
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be postgres or sqlite", ErrConfigMissing)
	}
	if c.Vector.URL == "" {
		return NewAppError("CONFIG_ERROR", "QDRANT_URL is required", ErrConfigMissing)
	}
	if c.Vector.Dimension <= 0 {
		return NewAppError("CONFIG_ERROR", "QDRANT_DIMENSION must be positive", ErrConfigMissing)
	}
	if s := c.Parser.Strategy; s != "line-filter" && s != "sentinel" {
		return NewAppError("CONFIG_ERROR", "PARSER_STRATEGY must be line-filter or sentinel", ErrConfigMissing)
	}
	return nil
}
