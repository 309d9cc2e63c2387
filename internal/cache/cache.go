// Package cache stores serialized reports keyed by their request.
// A cache is an optimisation only: a miss or a failure never changes a result.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"renewables-analytics/internal/models"
)

// ReportCache stores encoded reports
type ReportCache interface {
	// Get returns the cached payload and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
	Close() error
}

// Key derives a stable cache key from every parameter that affects a report
func Key(req models.AnalysisRequest) string {
	return "report:" + strconv.FormatUint(xxhash.Sum64String(canonical(req)), 16)
}

// FilterKey derives a cache key for a filtered analytics view
func FilterKey(view string, f models.FilterRequest) string {
	regions := make([]string, len(f.Regions))
	for i, r := range f.Regions {
		regions[i] = strings.ToUpper(strings.TrimSpace(r))
	}

	parts := []string{
		"view=" + view,
		"regions=" + strings.Join(regions, ","),
		"from=" + optionalYear(f.YearFrom),
		"to=" + optionalYear(f.YearTo),
		"energy_type=" + strings.ToLower(strings.TrimSpace(f.EnergyType)),
	}
	return "filtered:" + strconv.FormatUint(xxhash.Sum64String(strings.Join(parts, "|")), 16)
}

func canonical(req models.AnalysisRequest) string {
	column := strings.TrimSpace(req.ValueColumn)
	if resolved, ok := models.ResolveNumericColumn(column); ok {
		column = resolved
	}

	return strings.Join([]string{
		"report=" + req.Report,
		"value_col=" + column,
		"from=" + optionalYear(req.YearFrom),
		"to=" + optionalYear(req.YearTo),
		"country=" + strings.ToLower(strings.TrimSpace(req.Country)),
		"indicator=" + strings.ToLower(strings.TrimSpace(req.Indicator)),
	}, "|")
}

func optionalYear(y *int) string {
	if y == nil {
		return ""
	}
	return strconv.Itoa(*y)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache is a ReportCache backed by Redis with a fixed TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Get returns the cached payload for key
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return payload, true, nil
}

// Set stores payload under key with the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, payload []byte) error {
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
