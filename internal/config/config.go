package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"renewables-analytics/pkg/logging"
)

// Config is the full service configuration, loaded from the environment
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds dataset store connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

// CacheConfig holds the optional report cache settings. An empty RedisAddr disables the cache.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Enabled reports whether a report cache should be constructed
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// AnalyticsConfig holds request defaults
type AnalyticsConfig struct {
	DefaultIndicator string
	MaxFilterRegions int
}

// LoadConfig reads configuration from the environment. A .env file in the working
// directory, when present, seeds variables that are not already set.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}

	cfg := &Config{
		Server: ServerConfig{
			Host:         e.getString("SERVER_HOST", "0.0.0.0"),
			Port:         e.getInt("SERVER_PORT", 8080),
			ReadTimeout:  e.getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: e.getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  e.getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            e.getString("DB_HOST", "localhost"),
			Port:            e.getInt("DB_PORT", 5432),
			User:            e.getString("DB_USER", "postgres"),
			Password:        e.getString("DB_PASSWORD", ""),
			Database:        e.getString("DB_NAME", "renewables"),
			SSLMode:         e.getString("DB_SSLMODE", "disable"),
			MaxOpenConns:    e.getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    e.getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: e.getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: e.getDuration("DB_CONN_MAX_IDLE_TIME", time.Minute),
		},
		Logging: LoggingConfig{
			Level: e.getString("LOG_LEVEL", "info"),
		},
		Cache: CacheConfig{
			RedisAddr:     e.getString("REDIS_ADDR", ""),
			RedisPassword: e.getString("REDIS_PASSWORD", ""),
			RedisDB:       e.getInt("REDIS_DB", 0),
			TTL:           e.getDuration("CACHE_TTL", 5*time.Minute),
		},
		Analytics: AnalyticsConfig{
			DefaultIndicator: e.getString("DEFAULT_INDICATOR", "gdp"),
			MaxFilterRegions: e.getInt("MAX_FILTER_REGIONS", 50),
		},
	}

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port out of range: %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database host is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("database name is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Errorf("database port out of range: %d", c.Database.Port))
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("database max open connections must be positive"))
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, errors.New("database max idle connections must be between 0 and max open connections"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache ttl must not be negative"))
	}
	if c.Analytics.MaxFilterRegions <= 0 {
		errs = append(errs, errors.New("max filter regions must be positive"))
	}

	return errors.Join(errs...)
}

type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) getString(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *env) getInt(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid integer for %s: %w", key, err))
		return def
	}
	return n
}

func (e *env) getDuration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid duration for %s: %w", key, err))
		return def
	}
	return d
}
