package models

import (
	"fmt"
	"strings"
)

// Report names accepted by the analytics API
const (
	ReportGlobalTrends   = "global-trends"
	ReportEnergySources  = "energy-sources"
	ReportRegionsRanking = "regions-ranking"
	ReportCorrelation    = "correlation"
)

// Reports lists every report in the order the overview returns them
var Reports = []string{
	ReportGlobalTrends,
	ReportEnergySources,
	ReportRegionsRanking,
	ReportCorrelation,
}

// Supported correlation indicators
const (
	IndicatorGDP           = "gdp"
	IndicatorPopulation    = "population"
	IndicatorEnergyBalance = "energy_balance"
)

// Indicators lists the supported correlation indicators
var Indicators = []string{IndicatorGDP, IndicatorPopulation, IndicatorEnergyBalance}

const (
	MinYear = 1900
	MaxYear = 2100
)

// AnalysisRequest carries every parameter of one analytics call.
// Zero values mean "not set".
type AnalysisRequest struct {
	Report      string `json:"report"`
	ValueColumn string `json:"value_column,omitempty"`
	YearFrom    *int   `json:"year_from,omitempty"`
	YearTo      *int   `json:"year_to,omitempty"`
	Country     string `json:"country,omitempty"`
	Indicator   string `json:"indicator,omitempty"`
}

// IsReport reports whether name is a known report
func IsReport(name string) bool {
	for _, r := range Reports {
		if r == name {
			return true
		}
	}
	return false
}

// Validate checks request parameters that do not depend on the dataset
func (r AnalysisRequest) Validate() error {
	if !IsReport(r.Report) {
		return &ValidationError{
			Field:   "report",
			Value:   r.Report,
			Message: fmt.Sprintf("unknown report %q, expected one of %s", r.Report, strings.Join(Reports, ", ")),
		}
	}

	bounds := []struct {
		field string
		year  *int
	}{
		{"year_from", r.YearFrom},
		{"year_to", r.YearTo},
	}
	for _, b := range bounds {
		if b.year != nil && (*b.year < MinYear || *b.year > MaxYear) {
			return &ValidationError{
				Field:   b.field,
				Value:   fmt.Sprint(*b.year),
				Message: fmt.Sprintf("%s must be between %d and %d", b.field, MinYear, MaxYear),
			}
		}
	}

	if r.YearFrom != nil && r.YearTo != nil && *r.YearFrom > *r.YearTo {
		return &ValidationError{
			Field:   "year_from",
			Value:   fmt.Sprint(*r.YearFrom),
			Message: "year_from must not be after year_to",
		}
	}

	if r.ValueColumn != "" {
		if _, ok := ResolveNumericColumn(r.ValueColumn); !ok {
			return &ValidationError{
				Field:   "value_col",
				Value:   r.ValueColumn,
				Message: fmt.Sprintf("unknown value column %q", r.ValueColumn),
			}
		}
	}

	return nil
}

// InRange reports whether year passes the request's year filter
func (r AnalysisRequest) InRange(year int) bool {
	if r.YearFrom != nil && year < *r.YearFrom {
		return false
	}
	if r.YearTo != nil && year > *r.YearTo {
		return false
	}
	return true
}

// MatchesCountry reports whether region passes the request's country filter.
// The filter is a case-insensitive substring match.
func (r AnalysisRequest) MatchesCountry(region string) bool {
	if r.Country == "" {
		return true
	}
	return strings.Contains(strings.ToLower(region), strings.ToLower(strings.TrimSpace(r.Country)))
}

// Period returns the request's year range, or the observed range for unset bounds
func (r AnalysisRequest) Period(observedFrom, observedTo int) Period {
	p := Period{From: observedFrom, To: observedTo}
	if r.YearFrom != nil {
		p.From = *r.YearFrom
	}
	if r.YearTo != nil {
		p.To = *r.YearTo
	}
	return p
}
