package services

import (
	"context"
	"fmt"

	"renewables-analytics/internal/analytics"
	"renewables-analytics/internal/cache"
	"renewables-analytics/internal/models"
	"renewables-analytics/internal/repository"
	"renewables-analytics/pkg/logging"
)

// Filtered analytics views
const (
	ViewYearlyTrends  = "yearly-trends"
	ViewEnergySources = "energy-sources"
	ViewTimeseries    = "timeseries"
)

func (s *AnalyticsService) validateFilter(f models.FilterRequest) error {
	if len(f.Regions) > s.opts.MaxFilterRegions {
		return &models.ValidationError{
			Field:   "regions",
			Value:   fmt.Sprint(len(f.Regions)),
			Message: fmt.Sprintf("at most %d regions may be selected", s.opts.MaxFilterRegions),
		}
	}

	// Year bounds share the analysis request rules
	years := models.AnalysisRequest{Report: models.ReportGlobalTrends, YearFrom: f.YearFrom, YearTo: f.YearTo}
	return years.Validate()
}

// filtered loads the regions' rows and applies build, caching the result under view
func filtered[T any](ctx context.Context, s *AnalyticsService, view string, f models.FilterRequest, build func(*models.Dataset, models.FilterRequest) (T, error)) (T, error) {
	var zero T
	if err := s.validateFilter(f); err != nil {
		s.metrics.RecordReportError(view, "validation")
		return zero, err
	}

	key := cache.FilterKey(view, f)
	var cached T
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	ds, err := s.repo.LoadDataset(ctx, repository.FilterForRegions(f))
	if err != nil {
		s.metrics.RecordReportError(view, "load")
		return zero, fmt.Errorf("failed to load dataset for %s: %w", view, err)
	}

	timer := s.metrics.NewTimer(s.metrics.ReportDuration.WithLabelValues(view))
	result, err := build(ds, f)
	duration := timer.ObserveDuration()
	if err != nil {
		s.metrics.RecordReportError(view, "analysis")
		return zero, err
	}

	s.logger.Info(ctx, "[FILTERED_COMPLETE] Filtered view computed", logging.Fields{
		"view":        view,
		"regions":     f.Regions,
		"energy_type": f.EnergyType,
		"rows":        ds.Len(),
		"duration_ms": duration.Milliseconds(),
	})

	s.store(ctx, key, result)
	return result, nil
}

// YearlyTrendsByRegions returns yearly energy averages for the selected regions
func (s *AnalyticsService) YearlyTrendsByRegions(ctx context.Context, f models.FilterRequest) (models.YearlyTrendsByRegions, error) {
	return filtered(ctx, s, ViewYearlyTrends, f, analytics.YearlyTrendsByRegions)
}

// EnergySourcesByRegions returns the energy mix of the selected regions
func (s *AnalyticsService) EnergySourcesByRegions(ctx context.Context, f models.FilterRequest) (models.EnergySourcesByRegions, error) {
	return filtered(ctx, s, ViewEnergySources, f, analytics.EnergySourcesByRegions)
}

// TimeSeriesByEnergyType returns the yearly totals of one energy type per region
func (s *AnalyticsService) TimeSeriesByEnergyType(ctx context.Context, f models.FilterRequest) (models.TimeSeriesByRegions, error) {
	return filtered(ctx, s, ViewTimeseries, f, analytics.TimeSeriesByEnergyType)
}
