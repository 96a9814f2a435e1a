package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Data        DataConfig        `mapstructure:"data"`
	Matcher     MatcherConfig     `mapstructure:"matcher"`
	Severity    SeverityConfig    `mapstructure:"severity"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Cache       CacheConfig       `mapstructure:"cache"`
	History     HistoryConfig     `mapstructure:"history"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DataConfig locates the reference datasets loaded into each bundle.
type DataConfig struct {
	Path       string `mapstructure:"path"`
	MasterPath string `mapstructure:"master_path"`
}

// MatcherConfig tunes the fuzzy symptom matcher.
type MatcherConfig struct {
	FuzzyThreshold int           `mapstructure:"fuzzy_threshold"`
	MaxMatches     int           `mapstructure:"max_matches"`
	CacheSize      int           `mapstructure:"cache_size"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// SeverityConfig is the tunable severity-scoring policy surface: the
// thresholds partitioning the continuous score and the duration curve.
type SeverityConfig struct {
	ModerateThreshold float64 `mapstructure:"moderate_threshold"`
	SevereThreshold   float64 `mapstructure:"severe_threshold"`
	DurationFactor    float64 `mapstructure:"duration_factor"`
}

// RateLimitConfig represents the fixed-window rate limit policy.
type RateLimitConfig struct {
	Requests     int           `mapstructure:"requests"`
	Window       time.Duration `mapstructure:"window"`
	ReloadPerMin int           `mapstructure:"reload_per_minute"`
}

// IdempotencyConfig governs duplicate-request suppression.
type IdempotencyConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// CacheConfig represents the external key-value store connection.
type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	OpTimeout   time.Duration `mapstructure:"op_timeout"`
	PoolSize    int           `mapstructure:"pool_size"`
}

// HistoryConfig locates the diagnosis-record database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
