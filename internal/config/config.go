package config

import (
	"math"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Port          string
	Environment   string
	MaxFileSize   int64  // in bytes
	MaxOutputSize uint32 // largest declared size the decoder will allocate
	PassThrough   bool   // return input without an LZSS header unchanged
	Trace         bool   // log decoder events
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("GO_ENV", "development"),
		MaxFileSize:   getEnvInt64("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		MaxOutputSize: uint32(min(getEnvInt64("MAX_OUTPUT_SIZE", 256*1024*1024), math.MaxUint32)),
		PassThrough:   getEnvBool("LZSS_PASSTHROUGH", true),
		Trace:         getEnvBool("LZSS_TRACE", false),
	}

	return cfg
}

// IsProduction reports whether the service runs with GO_ENV=production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
