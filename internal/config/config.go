package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/healthcare-diagnosis-server/internal/domain"
)

// Manager loads and validates application configuration using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/diagnosis-server/")

	viper.SetEnvPrefix("DIAGNOSIS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars cover the rest.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Reference data defaults
	viper.SetDefault("data.path", "data/")
	viper.SetDefault("data.master_path", "master-data/")

	// Matcher defaults
	viper.SetDefault("matcher.fuzzy_threshold", 2)
	viper.SetDefault("matcher.max_matches", 10)
	viper.SetDefault("matcher.cache_size", 1024)
	viper.SetDefault("matcher.cache_ttl", "5m")

	// Severity policy defaults
	viper.SetDefault("severity.moderate_threshold", 7.0)
	viper.SetDefault("severity.severe_threshold", 13.0)
	viper.SetDefault("severity.duration_factor", 1.0)

	// Rate limit defaults
	viper.SetDefault("rate_limit.requests", 60)
	viper.SetDefault("rate_limit.window", "60s")
	viper.SetDefault("rate_limit.reload_per_minute", 5)

	// Idempotency defaults
	viper.SetDefault("idempotency.ttl", "1h")
	viper.SetDefault("idempotency.lock_ttl", "10s")
	viper.SetDefault("idempotency.poll_interval", "100ms")

	// Cache defaults
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.dial_timeout", "5s")
	viper.SetDefault("cache.op_timeout", "2s")
	viper.SetDefault("cache.pool_size", 10)

	// History defaults
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.db_path", "data/diagnoses.db")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Data.Path == "" {
		return fmt.Errorf("data path is required")
	}
	if config.Data.MasterPath == "" {
		return fmt.Errorf("master data path is required")
	}

	if config.Matcher.FuzzyThreshold < 0 {
		return fmt.Errorf("fuzzy threshold must be non-negative")
	}
	if config.Matcher.MaxMatches <= 0 {
		return fmt.Errorf("max matches must be positive")
	}

	if config.Severity.SevereThreshold <= config.Severity.ModerateThreshold {
		return fmt.Errorf("severe threshold (%.2f) must exceed moderate threshold (%.2f)",
			config.Severity.SevereThreshold, config.Severity.ModerateThreshold)
	}
	if config.Severity.DurationFactor < 0 {
		return fmt.Errorf("duration factor must be non-negative")
	}

	if config.RateLimit.Requests <= 0 {
		return fmt.Errorf("rate limit request count must be positive")
	}
	if config.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}

	if config.Idempotency.TTL <= 0 {
		return fmt.Errorf("idempotency TTL must be positive")
	}
	if config.Idempotency.LockTTL <= 0 {
		return fmt.Errorf("idempotency lock TTL must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetRedisConnectionString returns the Redis connection string
func (m *Manager) GetRedisConnectionString() string {
	return m.config.Cache.RedisURL
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}
