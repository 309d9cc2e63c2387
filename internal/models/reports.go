package models

// Period is an inclusive year range
type Period struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// TrendLine is an ordinary least squares fit of value over year
type TrendLine struct {
	Slope     float64  `json:"slope"`
	Intercept float64  `json:"intercept"`
	RSquared  *float64 `json:"r_squared,omitempty"`
}

// YearlyAverage is the mean value observed in one year
type YearlyAverage struct {
	Year         int     `json:"year"`
	AverageValue float64 `json:"average_value"`
}

// YearOverYearChange compares the means of two consecutive observed years.
// ChangePct is nil when the earlier mean is zero.
type YearOverYearChange struct {
	FromYear  int      `json:"from_year"`
	ToYear    int      `json:"to_year"`
	FromValue float64  `json:"from_value"`
	ToValue   float64  `json:"to_value"`
	ChangePct *float64 `json:"change_pct"`
}

// RegionAverage is the mean value of a region across all years
type RegionAverage struct {
	Region  string  `json:"region"`
	Average float64 `json:"average"`
}

// GlobalTrendsReport summarises the evolution of the selected metric across all regions
type GlobalTrendsReport struct {
	OverallGrowthRate  *float64             `json:"overall_growth_rate"`
	TrendDirection     string               `json:"trend_direction"`
	Trend              *TrendLine           `json:"trend"`
	YearlyAverages     []YearlyAverage      `json:"yearly_averages"`
	YearOverYearChange []YearOverYearChange `json:"year_over_year_changes"`
	TopRegions         []RegionAverage      `json:"top_regions"`
	Period             Period               `json:"period"`
	MetricUsed         string               `json:"metric_used"`
}

// TimePoint is one (year, value) sample of a series
type TimePoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// SourceSummary aggregates the energy value of one source
type SourceSummary struct {
	Source          string   `json:"source"`
	Average         float64  `json:"average"`
	Total           float64  `json:"total"`
	Min             float64  `json:"min"`
	Max             float64  `json:"max"`
	DataPoints      int      `json:"data_points"`
	AvgRenewablePct *float64 `json:"avg_renewable_pct,omitempty"`
}

// EnergySourcesReport compares energy sources
type EnergySourcesReport struct {
	Sources               []SourceSummary        `json:"sources"`
	TimeseriesBySource    map[string][]TimePoint `json:"timeseries_by_source"`
	SourceColumn          string                 `json:"source_column"`
	ValueColumn           string                 `json:"value_column"`
	RenewablePctAvailable bool                   `json:"renewable_pct_available"`
}

// RankingEntry is the per-region record behind every ranking view.
// GrowthRate and TotalChangePct are nil when not computable.
type RankingEntry struct {
	Region         string   `json:"region"`
	CurrentValue   float64  `json:"current_value"`
	GrowthRate     *float64 `json:"growth_rate"`
	TotalChangePct *float64 `json:"total_change_pct"`
	FirstValue     float64  `json:"first_value"`
	LastValue      float64  `json:"last_value"`
	DataPoints     int      `json:"data_points"`
}

// RegionsRankingReport orders regions by current value and growth
type RegionsRankingReport struct {
	LeadingByValue []RankingEntry `json:"leading_by_value"`
	FastestGrowing []RankingEntry `json:"fastest_growing"`
	Lagging        []RankingEntry `json:"lagging"`
	TotalRegions   int            `json:"total_regions"`
	MetricUsed     string         `json:"metric_used"`
}

// CorrelationEntry is the correlation of one region's paired series
type CorrelationEntry struct {
	Region      string  `json:"region"`
	Correlation float64 `json:"correlation"`
	DataPoints  int     `json:"data_points"`
}

// CorrelationYearlyAverage holds the yearly means of both correlated series
type CorrelationYearlyAverage struct {
	Year         int     `json:"year"`
	RenewableAvg float64 `json:"renewable_avg"`
	IndicatorAvg float64 `json:"indicator_avg"`
}

// CorrelationReport relates the renewable metric to an external indicator
type CorrelationReport struct {
	OverallCorrelation   *float64                   `json:"overall_correlation"`
	CorrelationStrength  string                     `json:"correlation_strength"`
	RegionalCorrelations []CorrelationEntry         `json:"regional_correlations"`
	YearlyAverages       []CorrelationYearlyAverage `json:"yearly_averages"`
	RenewableTrend       *TrendLine                 `json:"renewable_trend"`
	IndicatorTrend       *TrendLine                 `json:"indicator_trend"`
	IndicatorType        string                     `json:"indicator_type"`
	ValueColumn          string                     `json:"value_column"`
	DataPoints           int                        `json:"data_points"`
}

// SourceValue is the summed value of one energy source
type SourceValue struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

// RegionSources lists the energy mix of one region
type RegionSources struct {
	Sources []SourceValue `json:"sources"`
}

// YearlyTrendsByRegions maps region to its yearly averages
type YearlyTrendsByRegions map[string][]YearlyAverage

// EnergySourcesByRegions maps region to its energy mix
type EnergySourcesByRegions map[string]RegionSources

// TimeSeriesByRegions maps region to the yearly totals of one energy type
type TimeSeriesByRegions map[string][]TimePoint

// FilterRequest carries the parameters of the filtered analytics endpoints
type FilterRequest struct {
	Regions    []string `json:"regions,omitempty"`
	YearFrom   *int     `json:"year_from,omitempty"`
	YearTo     *int     `json:"year_to,omitempty"`
	EnergyType string   `json:"energy_type,omitempty"`
}

// InRange reports whether year passes the filter's year bounds
func (f FilterRequest) InRange(year int) bool {
	if f.YearFrom != nil && year < *f.YearFrom {
		return false
	}
	if f.YearTo != nil && year > *f.YearTo {
		return false
	}
	return true
}

// Overview holds every report computed over one dataset load.
// A slot is nil when its report failed; the failure is in Errors.
type Overview struct {
	GlobalTrends   *GlobalTrendsReport       `json:"global_trends,omitempty"`
	EnergySources  *EnergySourcesReport      `json:"energy_sources,omitempty"`
	RegionsRanking *RegionsRankingReport     `json:"regions_ranking,omitempty"`
	Correlation    *CorrelationReport        `json:"correlation,omitempty"`
	Errors         map[string]*AnalysisError `json:"errors,omitempty"`
}
