package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"renewables-analytics/internal/analytics"
	"renewables-analytics/internal/cache"
	"renewables-analytics/internal/models"
	"renewables-analytics/internal/repository"
	"renewables-analytics/pkg/logging"
	"renewables-analytics/pkg/metrics"
)

// Options tunes request defaults and limits
type Options struct {
	DefaultIndicator string
	MaxFilterRegions int
}

// AnalyticsService loads the dataset and computes reports over it
type AnalyticsService struct {
	repo    repository.DatasetRepository
	cache   cache.ReportCache
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	opts    Options
}

// NewAnalyticsService creates a new analytics service. reportCache may be nil.
func NewAnalyticsService(
	repo repository.DatasetRepository,
	reportCache cache.ReportCache,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	opts Options,
) *AnalyticsService {
	if opts.DefaultIndicator == "" {
		opts.DefaultIndicator = models.IndicatorGDP
	}
	if opts.MaxFilterRegions <= 0 {
		opts.MaxFilterRegions = 50
	}

	return &AnalyticsService{
		repo:    repo,
		cache:   reportCache,
		logger:  logger,
		metrics: metricsCollector,
		opts:    opts,
	}
}

// newReport allocates the report type produced by name, for cache decoding
func newReport(name string) interface{} {
	switch name {
	case models.ReportGlobalTrends:
		return &models.GlobalTrendsReport{}
	case models.ReportEnergySources:
		return &models.EnergySourcesReport{}
	case models.ReportRegionsRanking:
		return &models.RegionsRankingReport{}
	case models.ReportCorrelation:
		return &models.CorrelationReport{}
	default:
		return nil
	}
}

func (s *AnalyticsService) withDefaults(req models.AnalysisRequest) models.AnalysisRequest {
	if req.Report == models.ReportCorrelation && strings.TrimSpace(req.Indicator) == "" {
		req.Indicator = s.opts.DefaultIndicator
	}
	return req
}

// Report computes the report named by req.Report.
// Report-level failures are returned as *models.AnalysisError.
func (s *AnalyticsService) Report(ctx context.Context, req models.AnalysisRequest) (interface{}, error) {
	req = s.withDefaults(req)
	if err := req.Validate(); err != nil {
		s.metrics.RecordReportError(req.Report, "validation")
		return nil, err
	}

	log := s.logger.WithFields(logging.Fields{"report": req.Report})
	key := cache.Key(req)

	if cached := newReport(req.Report); s.lookup(ctx, key, cached) {
		log.Debug(ctx, "[ANALYSIS_CACHE_HIT] Report served from cache", logging.Fields{"cache_key": key})
		return cached, nil
	}

	log.Info(ctx, "[ANALYSIS_START] Computing report", logging.Fields{
		"value_col": req.ValueColumn,
		"year_from": req.YearFrom,
		"year_to":   req.YearTo,
		"country":   req.Country,
		"indicator": req.Indicator,
	})

	ds, err := s.repo.LoadDataset(ctx, repository.FilterForRequest(req))
	if err != nil {
		s.metrics.RecordReportError(req.Report, "load")
		return nil, fmt.Errorf("failed to load dataset for %s: %w", req.Report, err)
	}

	report, err := s.compute(ctx, ds, req)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, report)
	return report, nil
}

// compute runs one builder over an already loaded dataset
func (s *AnalyticsService) compute(ctx context.Context, ds *models.Dataset, req models.AnalysisRequest) (interface{}, error) {
	timer := s.metrics.NewTimer(s.metrics.ReportDuration.WithLabelValues(req.Report))
	report, err := analytics.Compute(ds, req)
	duration := timer.ObserveDuration()

	if err != nil {
		var aErr *models.AnalysisError
		if errors.As(err, &aErr) {
			s.metrics.RecordReportError(req.Report, "analysis")
			s.logger.Warn(ctx, "[ANALYSIS_REPORT_ERROR] Report could not be computed", logging.Fields{
				"report":            req.Report,
				"error":             aErr.Message,
				"available_columns": aErr.AvailableColumns,
			})
		} else {
			s.metrics.RecordReportError(req.Report, "validation")
		}
		return nil, err
	}

	s.logger.Info(ctx, "[ANALYSIS_COMPLETE] Report computed", logging.Fields{
		"report":      req.Report,
		"rows":        ds.Len(),
		"duration_ms": duration.Milliseconds(),
	})

	return report, nil
}

// GlobalTrends computes the global trends report
func (s *AnalyticsService) GlobalTrends(ctx context.Context, req models.AnalysisRequest) (*models.GlobalTrendsReport, error) {
	req.Report = models.ReportGlobalTrends
	return typedReport[models.GlobalTrendsReport](ctx, s, req)
}

// EnergySources computes the energy sources comparison
func (s *AnalyticsService) EnergySources(ctx context.Context, req models.AnalysisRequest) (*models.EnergySourcesReport, error) {
	req.Report = models.ReportEnergySources
	return typedReport[models.EnergySourcesReport](ctx, s, req)
}

// RegionsRanking computes the regions ranking
func (s *AnalyticsService) RegionsRanking(ctx context.Context, req models.AnalysisRequest) (*models.RegionsRankingReport, error) {
	req.Report = models.ReportRegionsRanking
	return typedReport[models.RegionsRankingReport](ctx, s, req)
}

// Correlation computes the correlation analysis
func (s *AnalyticsService) Correlation(ctx context.Context, req models.AnalysisRequest) (*models.CorrelationReport, error) {
	req.Report = models.ReportCorrelation
	return typedReport[models.CorrelationReport](ctx, s, req)
}

func typedReport[T any](ctx context.Context, s *AnalyticsService, req models.AnalysisRequest) (*T, error) {
	report, err := s.Report(ctx, req)
	if err != nil {
		return nil, err
	}

	typed, ok := report.(*T)
	if !ok {
		return nil, fmt.Errorf("unexpected report type %T for %s", report, req.Report)
	}
	return typed, nil
}

// Overview loads the dataset once and computes every report concurrently.
// A failed report leaves its slot empty and is listed in Errors; it never
// prevents the other reports from completing.
func (s *AnalyticsService) Overview(ctx context.Context, req models.AnalysisRequest) (*models.Overview, error) {
	req.Report = models.ReportGlobalTrends
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	ds, err := s.repo.LoadDataset(ctx, repository.FilterForRequest(req))
	if err != nil {
		s.metrics.RecordReportError("overview", "load")
		return nil, fmt.Errorf("failed to load dataset for overview: %w", err)
	}

	overview := &models.Overview{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range models.Reports {
		reportReq := req
		reportReq.Report = name
		reportReq = s.withDefaults(reportReq)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			report, err := s.compute(gctx, ds, reportReq)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				var aErr *models.AnalysisError
				if !errors.As(err, &aErr) {
					aErr = &models.AnalysisError{Message: err.Error()}
				}
				if overview.Errors == nil {
					overview.Errors = make(map[string]*models.AnalysisError)
				}
				overview.Errors[reportReq.Report] = aErr
				return nil
			}

			switch r := report.(type) {
			case *models.GlobalTrendsReport:
				overview.GlobalTrends = r
			case *models.EnergySourcesReport:
				overview.EnergySources = r
			case *models.RegionsRankingReport:
				overview.RegionsRanking = r
			case *models.CorrelationReport:
				overview.Correlation = r
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("overview interrupted: %w", err)
	}

	s.logger.Info(ctx, "[ANALYSIS_OVERVIEW_COMPLETE] Overview computed", logging.Fields{
		"rows":        ds.Len(),
		"failed":      len(overview.Errors),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return overview, nil
}

// Regions lists the available region codes
func (s *AnalyticsService) Regions(ctx context.Context) ([]string, error) {
	regions, err := s.repo.ListRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	return regions, nil
}

// HealthCheck verifies the dataset store is reachable
func (s *AnalyticsService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// lookup decodes a cached payload into dest. Cache failures count as misses.
func (s *AnalyticsService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil || dest == nil {
		return false
	}

	payload, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "[CACHE_ERROR] Cache lookup failed", logging.Fields{
			"cache_key": key,
			"error":     err.Error(),
		})
		s.metrics.RecordCacheLookup(false)
		return false
	}
	if found {
		if err := json.Unmarshal(payload, dest); err != nil {
			s.logger.Warn(ctx, "[CACHE_ERROR] Cached payload could not be decoded", logging.Fields{
				"cache_key": key,
				"error":     err.Error(),
			})
			found = false
		}
	}

	s.metrics.RecordCacheLookup(found)
	return found
}

// store encodes value into the cache; failures are logged and ignored
func (s *AnalyticsService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err == nil {
		err = s.cache.Set(ctx, key, payload)
	}
	if err != nil {
		s.logger.Warn(ctx, "[CACHE_ERROR] Cache store failed", logging.Fields{
			"cache_key": key,
			"error":     err.Error(),
		})
	}
}
