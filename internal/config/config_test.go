package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "gdp", cfg.Analytics.DefaultIndicator)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"SERVER_PORT":         "9090",
		"SERVER_READ_TIMEOUT": "3s",
		"DB_HOST":             "db",
		"REDIS_ADDR":          "redis:6379",
		"CACHE_TTL":           "30s",
		"LOG_LEVEL":           "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.True(t, cfg.Cache.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.NoError(t, cfg.Validate())
}

func TestFromLookup_InvalidValues(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{
		"SERVER_PORT": "eighty",
		"CACHE_TTL":   "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "bad server port", mutate: func(c *Config) { c.Server.Port = 0 }, errMsg: "server port"},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, errMsg: "database host"},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 100 }, errMsg: "idle"},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, errMsg: "log level"},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = -time.Second }, errMsg: "ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromLookup(lookupFrom(nil))
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
