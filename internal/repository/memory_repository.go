package repository

import (
	"context"
	"strings"

	"renewables-analytics/internal/models"
)

// memoryRepository serves a fixed set of records held in memory
type memoryRepository struct {
	records []models.Record
}

// NewMemoryRepository creates a repository over records. The slice is not copied
// and must not be modified afterwards.
func NewMemoryRepository(records []models.Record) DatasetRepository {
	return &memoryRepository{records: records}
}

// LoadDataset applies filter to the held records
func (r *memoryRepository) LoadDataset(ctx context.Context, filter DatasetFilter) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(filter.Regions))
	for _, region := range filter.Regions {
		wanted[strings.ToUpper(strings.TrimSpace(region))] = struct{}{}
	}
	country := strings.ToLower(strings.TrimSpace(filter.Country))

	var out []models.Record
	for _, rec := range r.records {
		if filter.YearFrom != nil && rec.Year < *filter.YearFrom {
			continue
		}
		if filter.YearTo != nil && rec.Year > *filter.YearTo {
			continue
		}
		if country != "" && !strings.Contains(strings.ToLower(rec.Region), country) {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[strings.ToUpper(rec.Region)]; !ok {
				continue
			}
		}
		out = append(out, rec)
	}

	return models.NewDataset(out), nil
}

// ListRegions returns the distinct region codes
func (r *memoryRepository) ListRegions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return models.NewDataset(r.records).Regions(), nil
}

// HealthCheck always succeeds
func (r *memoryRepository) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}
