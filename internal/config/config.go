// Package config provides environment-aware configuration management
// for the hydrogend daemon.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// DatabaseConfig describes one configured database and the engine that
// serves it.
type DatabaseConfig struct {
	Name   string
	Engine string // "postgres", "mysql", "sqlite", "db2"
	DSN    string
}

// Config holds all application configuration.
type Config struct {
	Env Environment

	// Orchestrator
	LaunchCycleInterval time.Duration
	LandCycleTimeout    time.Duration

	// Subsystem ports
	HTTPPort      int
	WebSocketPort int
	MDNSPort      int
	MetricsPort   int

	// Database queue
	Databases            []DatabaseConfig
	DBResultTTL          time.Duration
	DBRateLimitPerSecond float64
	DBRateBurst          int
	SlowQueueWorkers     int
	MediumQueueWorkers   int
	FastQueueWorkers     int
	CacheQueueEnabled    bool
	RedisAddr            string

	// Logging
	LogLevel  string
	LogFormat string

	// Features
	MetricsEnabled  bool
	TestMode        bool
	EnableDebugMode bool
}

// Load loads configuration based on the HYDROGEN_ENV environment
// variable and an optional .env file read with godotenv: fileOverride
// when non-empty, otherwise config/<env>.env. A missing file is not an
// error; values are then taken from the process environment.
func Load(fileOverride string) (*Config, error) {
	envStr := os.Getenv("HYDROGEN_ENV")
	if envStr == "" {
		envStr = string(Development)
	}

	env, ok := parseEnvironment(envStr)
	if !ok {
		return nil, fmt.Errorf("invalid HYDROGEN_ENV: %s (must be development, testing, or production)", envStr)
	}

	configFile := fileOverride
	if configFile == "" {
		configFile = filepath.Join("config", fmt.Sprintf("%s.env", env))
	}
	if err := godotenv.Load(configFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Printf("Warning: Could not load %s: %v\n", configFile, err)
		}
	}

	cfg := &Config{Env: env}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func parseEnvironment(s string) (Environment, bool) {
	switch Environment(strings.ToLower(s)) {
	case Development, Testing, Production:
		return Environment(strings.ToLower(s)), true
	default:
		return "", false
	}
}

func (c *Config) loadFromEnv() error {
	var err error

	c.LaunchCycleInterval, err = parseDurationEnv("LAUNCH_CYCLE_INTERVAL", 2*time.Second)
	if err != nil {
		return err
	}
	c.LandCycleTimeout, err = parseDurationEnv("LAND_CYCLE_TIMEOUT", 30*time.Second)
	if err != nil {
		return err
	}

	c.HTTPPort = getIntEnv("HTTP_PORT", 8080)
	c.WebSocketPort = getIntEnv("WEBSOCKET_PORT", 8081)
	c.MDNSPort = getIntEnv("MDNS_PORT", 5353)
	c.MetricsPort = getIntEnv("METRICS_PORT", 9090)

	c.Databases, err = parseDatabasesEnv(getEnv("HYDROGEN_DATABASES", ""))
	if err != nil {
		return err
	}
	c.DBResultTTL, err = parseDurationEnv("DB_RESULT_TTL", 30*time.Second)
	if err != nil {
		return err
	}
	c.DBRateLimitPerSecond = getFloatEnv("DB_RATE_LIMIT_PER_SECOND", 200)
	c.DBRateBurst = getIntEnv("DB_RATE_BURST", 50)
	c.SlowQueueWorkers = getIntEnv("DB_SLOW_WORKERS", 1)
	c.MediumQueueWorkers = getIntEnv("DB_MEDIUM_WORKERS", 2)
	c.FastQueueWorkers = getIntEnv("DB_FAST_WORKERS", 4)
	c.CacheQueueEnabled = getBoolEnv("DB_CACHE_QUEUE_ENABLED", true)
	c.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")

	c.LogLevel = getEnv("LOG_LEVEL", "info")
	c.LogFormat = getEnv("LOG_FORMAT", "json")

	c.MetricsEnabled = getBoolEnv("METRICS_ENABLED", c.Env == Production || c.Env == Development)
	c.TestMode = getBoolEnv("TEST_MODE", false)
	c.EnableDebugMode = getBoolEnv("ENABLE_DEBUG_MODE", false)

	return nil
}

// parseDatabasesEnv parses "name:engine:dsn,name:engine:dsn" pairs.
func parseDatabasesEnv(raw string) ([]DatabaseConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []DatabaseConfig
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid HYDROGEN_DATABASES entry %q (want name:engine:dsn)", entry)
		}
		out = append(out, DatabaseConfig{Name: parts[0], Engine: parts[1], DSN: parts[2]})
	}
	return out, nil
}

// IsDevelopment returns true if running in development environment.
func (c *Config) IsDevelopment() bool { return c.Env == Development }

// IsTesting returns true if running in testing environment.
func (c *Config) IsTesting() bool { return c.Env == Testing }

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool { return c.Env == Production }

// Validate validates the configuration before any subsystem is built.
func (c *Config) Validate() error {
	if c.IsProduction() && c.EnableDebugMode {
		return fmt.Errorf("ENABLE_DEBUG_MODE must be false in production")
	}

	ports := []int{c.HTTPPort, c.WebSocketPort, c.MDNSPort, c.MetricsPort}
	for _, port := range ports {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
		}
	}

	if c.DBResultTTL <= 0 {
		return fmt.Errorf("DB_RESULT_TTL must be greater than zero")
	}

	for _, db := range c.Databases {
		switch db.Engine {
		case "postgres", "mysql", "sqlite", "db2":
		default:
			return fmt.Errorf("database %q: unknown engine %q", db.Name, db.Engine)
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
