package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"renewables-analytics/pkg/logging"
	"renewables-analytics/pkg/metrics"
)

// Config holds database connection configuration
type Config struct {
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

// DSN builds the lib/pq connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}

// PostgresDB wraps sqlx.DB with monitoring and metrics
type PostgresDB struct {
	db      *sqlx.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	config  *Config
	stop    chan struct{}
}

// NewPostgresDB opens the dataset store and starts connection pool monitoring
func NewPostgresDB(cfg *Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*PostgresDB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info(ctx, "[DB_INIT] PostgreSQL connection established", logging.Fields{
		"host":              cfg.Host,
		"port":              cfg.Port,
		"database":          cfg.Database,
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	})

	pgDB := &PostgresDB{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
		config:  cfg,
		stop:    make(chan struct{}),
	}

	go pgDB.monitorConnectionPool()

	return pgDB, nil
}

// Close stops pool monitoring and closes the database connection
func (p *PostgresDB) Close() error {
	p.logger.Info(context.Background(), "[DB_CLOSE] Closing database connection", logging.Fields{
		"database": p.config.Database,
	})
	close(p.stop)
	return p.db.Close()
}

// GetContext executes a query that returns a single row
func (p *PostgresDB) GetContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error {
	timer := time.Now()
	defer func() {
		p.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(timer).Seconds())
	}()

	err := p.db.GetContext(ctx, dest, query, args...)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		p.metrics.RecordDBError("get_error")
		p.logger.Error(ctx, "[DB_GET_ERROR] Get query failed", logging.Fields{
			"query_type": queryType,
		}, err)
	}

	return err
}

// SelectContext executes a query that returns multiple rows
func (p *PostgresDB) SelectContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		p.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())

		p.logger.Debug(ctx, "[DB_QUERY] Query executed", logging.Fields{
			"query_type":  queryType,
			"duration_ms": duration.Milliseconds(),
		})
	}()

	err := p.db.SelectContext(ctx, dest, query, args...)
	if err != nil {
		p.metrics.RecordDBError("select_error")
		p.logger.Error(ctx, "[DB_SELECT_ERROR] Select query failed", logging.Fields{
			"query_type": queryType,
			"query":      query,
		}, err)
		return err
	}

	return nil
}

func (p *PostgresDB) monitorConnectionPool() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}

		stats := p.db.Stats()
		p.metrics.UpdateDBConnectionPool(stats.InUse, stats.Idle, stats.OpenConnections)

		if p.config.MaxOpenConns <= 0 {
			continue
		}

		utilization := float64(stats.InUse) / float64(p.config.MaxOpenConns)
		if utilization > 0.8 {
			p.logger.Warn(context.Background(), "[DB_POOL_WARNING] Connection pool utilization high", logging.Fields{
				"in_use":      stats.InUse,
				"idle":        stats.Idle,
				"total":       stats.OpenConnections,
				"max_open":    p.config.MaxOpenConns,
				"utilization": fmt.Sprintf("%.2f%%", utilization*100),
			})
		}
	}
}

// HealthCheck performs a database health check
func (p *PostgresDB) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}
