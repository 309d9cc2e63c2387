package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"renewables-analytics/internal/models"
	"renewables-analytics/pkg/database"
	"renewables-analytics/pkg/logging"
	"renewables-analytics/pkg/metrics"
)

// DatasetRepository provides read access to the merged renewables dataset
type DatasetRepository interface {
	// LoadDataset returns every observation passing filter
	LoadDataset(ctx context.Context, filter DatasetFilter) (*models.Dataset, error)
	// ListRegions returns the distinct region codes in ascending order
	ListRegions(ctx context.Context) ([]string, error)
	HealthCheck(ctx context.Context) error
}

// DatasetFilter narrows a dataset load. Zero values disable a filter.
type DatasetFilter struct {
	YearFrom *int
	YearTo   *int
	// Country is a case-insensitive substring of the region code
	Country string
	// Regions restricts the load to exact region codes, ignoring case
	Regions []string
}

// FilterForRequest builds the load filter matching an analysis request
func FilterForRequest(req models.AnalysisRequest) DatasetFilter {
	return DatasetFilter{YearFrom: req.YearFrom, YearTo: req.YearTo, Country: req.Country}
}

// FilterForRegions builds the load filter matching a filtered analytics request
func FilterForRegions(f models.FilterRequest) DatasetFilter {
	return DatasetFilter{YearFrom: f.YearFrom, YearTo: f.YearTo, Regions: f.Regions}
}

const selectObservations = `
		SELECT id, region, year, siec, nrg_bal,
		       renewable_pct, energy_balance, gdp, population
		FROM renewable_observations
		WHERE 1=1
	`

// buildLoadQuery appends filter predicates to the observation select
func buildLoadQuery(filter DatasetFilter) (string, []interface{}) {
	query := selectObservations
	args := []interface{}{}
	argNum := 1

	if filter.YearFrom != nil {
		query += fmt.Sprintf(" AND year >= $%d", argNum)
		args = append(args, *filter.YearFrom)
		argNum++
	}

	if filter.YearTo != nil {
		query += fmt.Sprintf(" AND year <= $%d", argNum)
		args = append(args, *filter.YearTo)
		argNum++
	}

	if country := strings.TrimSpace(filter.Country); country != "" {
		query += fmt.Sprintf(" AND region ILIKE '%%' || $%d || '%%'", argNum)
		args = append(args, country)
		argNum++
	}

	if len(filter.Regions) > 0 {
		regions := make([]string, len(filter.Regions))
		for i, r := range filter.Regions {
			regions[i] = strings.ToUpper(strings.TrimSpace(r))
		}
		query += fmt.Sprintf(" AND UPPER(region) = ANY($%d)", argNum)
		args = append(args, pq.Array(regions))
	}

	query += " ORDER BY region, year, id"
	return query, args
}

// datasetRepository implements DatasetRepository on PostgreSQL
type datasetRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDatasetRepository creates a PostgreSQL backed dataset repository
func NewDatasetRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) DatasetRepository {
	return &datasetRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// LoadDataset loads the filtered observations into memory
func (r *datasetRepository) LoadDataset(ctx context.Context, filter DatasetFilter) (*models.Dataset, error) {
	timer := time.Now()
	query, args := buildLoadQuery(filter)

	var records []models.Record
	if err := r.db.SelectContext(ctx, "load_dataset", &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	duration := time.Since(timer)
	r.metrics.DatasetRowsLoaded.Observe(float64(len(records)))
	r.metrics.DatasetLoadSeconds.Observe(duration.Seconds())

	r.logger.Debug(ctx, "[REPO_LOAD_DATASET] Dataset loaded", logging.Fields{
		"rows":        len(records),
		"duration_ms": duration.Milliseconds(),
		"country":     filter.Country,
		"regions":     len(filter.Regions),
	})

	return models.NewDataset(records), nil
}

// ListRegions returns the distinct region codes
func (r *datasetRepository) ListRegions(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT region
		FROM renewable_observations
		ORDER BY region
	`

	var regions []string
	if err := r.db.SelectContext(ctx, "list_regions", &regions, query); err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}

	return regions, nil
}

// HealthCheck pings the dataset store
func (r *datasetRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
