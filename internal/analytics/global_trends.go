package analytics

import (
	"sort"

	"renewables-analytics/internal/models"
)

const topRegionsLimit = 10

// BuildGlobalTrends computes yearly averages, the overall trend, year over year
// changes and the top regions of the selected metric.
func BuildGlobalTrends(ds *models.Dataset, req models.AnalysisRequest) (*models.GlobalTrendsReport, error) {
	column, err := resolveValueColumn(ds, req.ValueColumn)
	if err != nil {
		return nil, err
	}

	byYear := NewGroup[int]()
	byRegion := NewGroup[string]()
	for _, r := range filterRecords(ds, req) {
		v := r.Value(column)
		byYear.Add(r.Year, v)
		byRegion.Add(r.Region, v)
	}

	if byYear.Len() == 0 {
		return nil, models.NoDataError()
	}

	yearly := byYear.Summaries()
	years := make([]float64, len(yearly))
	means := make([]float64, len(yearly))
	averages := make([]models.YearlyAverage, len(yearly))
	for i, s := range yearly {
		years[i] = float64(s.Key)
		means[i] = s.Mean
		averages[i] = models.YearlyAverage{Year: s.Key, AverageValue: s.Mean}
	}

	trend := LinearRegression(years, means)
	var growth *float64
	if trend != nil {
		slope := trend.Slope
		growth = &slope
	}

	changes := make([]models.YearOverYearChange, 0, len(yearly))
	for i := 1; i < len(yearly); i++ {
		prev, cur := yearly[i-1], yearly[i]
		changes = append(changes, models.YearOverYearChange{
			FromYear:  prev.Key,
			ToYear:    cur.Key,
			FromValue: prev.Mean,
			ToValue:   cur.Mean,
			ChangePct: PercentChange(prev.Mean, cur.Mean),
		})
	}

	from, to := yearSpan(byYear.Keys())

	return &models.GlobalTrendsReport{
		OverallGrowthRate:  growth,
		TrendDirection:     TrendDirection(trend),
		Trend:              trend,
		YearlyAverages:     averages,
		YearOverYearChange: changes,
		TopRegions:         topRegions(byRegion, topRegionsLimit),
		Period:             req.Period(from, to),
		MetricUsed:         column,
	}, nil
}

// topRegions ranks regions by mean value, descending. Ties keep region name order.
func topRegions(byRegion *Group[string], limit int) []models.RegionAverage {
	summaries := byRegion.Summaries()
	out := make([]models.RegionAverage, len(summaries))
	for i, s := range summaries {
		out[i] = models.RegionAverage{Region: s.Key, Average: s.Mean}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Average > out[j].Average
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
