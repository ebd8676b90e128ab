// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment is the deployment environment the server runs in
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

func (e Environment) String() string {
	return string(e)
}

// ParseEnvironment maps an ENV value (short or long form) to an Environment
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	default:
		return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", s)
	}
}

// Config holds all application configuration
type Config struct {
	Port                  string
	Address               string
	Env                   Environment
	LogLevel              string
	LogDir                string
	LogRetentionWeeks     int   // Number of weeks to keep log files
	MaxLogFileSize        int64 // Maximum log file size in bytes
	MaxRequestBody        int64 // Maximum request body size in bytes
	MaxHeaderSize         int64 // Maximum header size in bytes
	GlossaryPath          string
	GlossaryReloadMinutes int // 0 disables scheduled reloads
	MaxReportChars        int
	CORSAllowedOrigins    []string
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	cfg := &Config{
		Port:                  getEnvWithDefault("PORT", "8000"),
		Address:               getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:                   env,
		LogLevel:              strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogDir:                getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks:     getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),         // 4 weeks default
		MaxLogFileSize:        getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:        getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:         getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default
		GlossaryPath:          os.Getenv("GLOSSARY_PATH"),
		GlossaryReloadMinutes: getIntEnvWithDefault("GLOSSARY_RELOAD_MINUTES", 60),
		MaxReportChars:        getIntEnvWithDefault("MAX_REPORT_CHARS", 100000),
		CORSAllowedOrigins:    splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig checks every value and reports the first failure with the
// variable it came from
func validateConfig(cfg *Config) error {
	checks := []struct {
		name string
		err  error
	}{
		{"PORT", validatePort(cfg.Port)},
		{"ADDRESS", validateAddress(cfg.Address)},
		{"LOG_LEVEL", validateLogLevel(cfg.LogLevel)},
		{"LOG_DIR", validateNotBlank(cfg.LogDir, "LOG_DIR")},
		{"LOG_RETENTION_WEEKS", validateRange(cfg.LogRetentionWeeks, 1, 52, "LOG_RETENTION_WEEKS")},
		{"MAX_LOG_FILE_SIZE", validateBytes(cfg.MaxLogFileSize, 1*mb, 1024*mb, "MAX_LOG_FILE_SIZE")},
		{"MAX_REQUEST_BODY", validateBytes(cfg.MaxRequestBody, 1, 100*mb, "MAX_REQUEST_BODY")},
		{"MAX_HEADER_SIZE", validateBytes(cfg.MaxHeaderSize, 1, 100*mb, "MAX_HEADER_SIZE")},
		{"GLOSSARY_PATH", validateGlossaryPath(cfg.GlossaryPath)},
		{"GLOSSARY_RELOAD_MINUTES", validateRange(cfg.GlossaryReloadMinutes, 0, 1440, "GLOSSARY_RELOAD_MINUTES")},
		{"MAX_REPORT_CHARS", validateRange(cfg.MaxReportChars, 1, 1000000, "MAX_REPORT_CHARS")},
		{"CORS_ALLOWED_ORIGINS", validateOrigins(cfg.CORSAllowedOrigins)},
	}

	for _, c := range checks {
		if c.err != nil {
			return fmt.Errorf("invalid %s: %w", c.name, c.err)
		}
	}
	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	// Only loopback and private ranges; the API is meant to sit behind a proxy
	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

const mb = 1024 * 1024

// validateBytes checks a byte size against [minValue, maxValue]
func validateBytes(size, minValue, maxValue int64, configName string) error {
	switch {
	case size <= 0:
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	case size < minValue:
		return fmt.Errorf("%s is too small (min %s), got: %d bytes", configName, formatBytes(minValue), size)
	case size > maxValue:
		return fmt.Errorf("%s is too large (max %s), got: %d bytes", configName, formatBytes(maxValue), size)
	}
	return nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*mb && n%(1024*mb) == 0:
		return strconv.FormatInt(n/(1024*mb), 10) + "GB"
	case n >= mb && n%mb == 0:
		return strconv.FormatInt(n/mb, 10) + "MB"
	}
	return strconv.FormatInt(n, 10) + "B"
}

func validateNotBlank(value, configName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be blank", configName)
	}
	return nil
}

func validateOrigins(origins []string) error {
	if len(origins) == 0 {
		return fmt.Errorf("at least one origin is required, use * to allow any")
	}
	return nil
}

// validateGlossaryPath accepts an empty location (built-in glossary), or a
// file path or http(s) URL naming a JSON or YAML document
func validateGlossaryPath(location string) error {
	if location == "" {
		return nil
	}

	name := location
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if u.Host == "" {
			return fmt.Errorf("GLOSSARY_PATH URL has no host: %s", location)
		}
		name = u.Path
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return nil
	default:
		return fmt.Errorf("GLOSSARY_PATH must point to a .json, .yaml or .yml document, got: %s", location)
	}
}

func validateRange(value, minValue, maxValue int, configName string) error {
	if value < minValue || value > maxValue {
		return fmt.Errorf("%s must be between %d and %d, got: %d", configName, minValue, maxValue, value)
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank items
func splitList(value string) []string {
	var items []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value.
// A value that does not parse is passed through as -1 so validation rejects it.
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return -1
		}
		return intValue
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return -1
		}
		return intValue
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"GLOSSARY_PATH",
		"GLOSSARY_RELOAD_MINUTES",
		"MAX_REPORT_CHARS",
		"CORS_ALLOWED_ORIGINS",
	}
}
