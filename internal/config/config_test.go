package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "data/", cfg.Data.Path)
	assert.Equal(t, "master-data/", cfg.Data.MasterPath)

	assert.Equal(t, 2, cfg.Matcher.FuzzyThreshold)
	assert.Equal(t, 10, cfg.Matcher.MaxMatches)
	assert.Equal(t, 5*time.Minute, cfg.Matcher.CacheTTL)

	assert.Equal(t, 7.0, cfg.Severity.ModerateThreshold)
	assert.Equal(t, 13.0, cfg.Severity.SevereThreshold)
	assert.Equal(t, 1.0, cfg.Severity.DurationFactor)

	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.RateLimit.ReloadPerMin)

	assert.Equal(t, time.Hour, cfg.Idempotency.TTL)
	assert.Equal(t, 10*time.Second, cfg.Idempotency.LockTTL)
	assert.Equal(t, 100*time.Millisecond, cfg.Idempotency.PollInterval)

	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestManagerEnvOverride(t *testing.T) {
	t.Setenv("DIAGNOSIS_SERVER_PORT", "9090")
	t.Setenv("DIAGNOSIS_LOGGING_LEVEL", "debug")

	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidateDefaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)
	assert.NoError(t, m.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Manager)
	}{
		{"invalid port", func(m *Manager) { m.config.Server.Port = 0 }},
		{"missing data path", func(m *Manager) { m.config.Data.Path = "" }},
		{"missing master path", func(m *Manager) { m.config.Data.MasterPath = "" }},
		{"negative fuzzy threshold", func(m *Manager) { m.config.Matcher.FuzzyThreshold = -1 }},
		{"zero max matches", func(m *Manager) { m.config.Matcher.MaxMatches = 0 }},
		{"inverted severity thresholds", func(m *Manager) {
			m.config.Severity.ModerateThreshold = 13
			m.config.Severity.SevereThreshold = 7
		}},
		{"negative duration factor", func(m *Manager) { m.config.Severity.DurationFactor = -0.5 }},
		{"zero rate limit", func(m *Manager) { m.config.RateLimit.Requests = 0 }},
		{"zero rate window", func(m *Manager) { m.config.RateLimit.Window = 0 }},
		{"zero idempotency ttl", func(m *Manager) { m.config.Idempotency.TTL = 0 }},
		{"zero lock ttl", func(m *Manager) { m.config.Idempotency.LockTTL = 0 }},
		{"bogus log level", func(m *Manager) { m.config.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager()
			require.NoError(t, err)
			tt.mutate(m)
			assert.Error(t, m.Validate())
		})
	}
}
