package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// External source defaults
	UseDB      bool
	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBTimeout  time.Duration

	// Source cache
	SourceCacheTTL  time.Duration
	SourceCacheSize int

	// UI
	DarkMode bool

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
}

var validDrivers = []string{"mysql", "postgres", "sqlserver", "sqlite"}

var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		UseDB:      getEnvBool("USE_DB", false),
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 3306),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "anggaran_db"),
		DBTimeout:  getEnvDuration("DB_TIMEOUT", 10*time.Second),

		SourceCacheTTL:  getEnvDuration("SOURCE_CACHE_TTL", 5*time.Minute),
		SourceCacheSize: getEnvInt("SOURCE_CACHE_SIZE", 32),

		DarkMode: getEnvBool("DARK_MODE", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "anggaran"),
	}
}

// Validate checks every setting and reports all problems at once.
// Missing connection fields are not errors: the dashboard falls back to
// the static dataset when they are absent.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if !contains(validDrivers, c.DBDriver) {
		errors = append(errors, fmt.Sprintf("invalid database driver '%s': must be one of %v", c.DBDriver, validDrivers))
	}
	if c.DBDriver != "sqlite" && (c.DBPort < 1 || c.DBPort > 65535) {
		errors = append(errors, fmt.Sprintf("invalid database port %d: must be between 1 and 65535", c.DBPort))
	}
	if c.DBTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid database timeout %v: must be at least 1 second", c.DBTimeout))
	}

	if c.SourceCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid source cache TTL %v: must not be negative", c.SourceCacheTTL))
	} else if c.SourceCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid source cache TTL %v: must be at most 24 hours", c.SourceCacheTTL))
	}
	if c.SourceCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid source cache size %d: must be at least 1", c.SourceCacheSize))
	} else if c.SourceCacheSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid source cache size %d: must be at most 1000", c.SourceCacheSize))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
