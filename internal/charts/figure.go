// Package charts builds plot descriptors for analytics reports and renders PNG previews.
// Figures are pure functions of a report; reports never depend on this package.
package charts

import (
	"fmt"
	"sort"

	"renewables-analytics/internal/models"
)

const (
	barColor       = "rgba(56, 189, 248, 0.8)"
	barLineColor   = "rgba(56, 189, 248, 1.0)"
	trendColor     = "rgba(248, 113, 113, 1.0)"
	indicatorColor = "rgba(250, 204, 21, 1.0)"
	template       = "plotly_white"
)

// Figure is a generic {data, layout} plot descriptor
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one series of a figure. X holds years or category labels.
type Trace struct {
	Type   string        `json:"type"`
	Mode   string        `json:"mode,omitempty"`
	Name   string        `json:"name"`
	X      []interface{} `json:"x"`
	Y      []float64     `json:"y"`
	YAxis  string        `json:"yaxis,omitempty"`
	Line   *Line         `json:"line,omitempty"`
	Marker *Marker       `json:"marker,omitempty"`
}

// Line styles a scatter trace
type Line struct {
	Color string `json:"color,omitempty"`
	Dash  string `json:"dash,omitempty"`
	Width int    `json:"width,omitempty"`
}

// Marker styles bars and points
type Marker struct {
	Color string `json:"color,omitempty"`
	Line  *Line  `json:"line,omitempty"`
}

// Axis describes one axis of the layout
type Axis struct {
	Title      string `json:"title"`
	Overlaying string `json:"overlaying,omitempty"`
	Side       string `json:"side,omitempty"`
}

// Annotation is free text placed on the figure
type Annotation struct {
	Text      string `json:"text"`
	ShowArrow bool   `json:"showarrow"`
}

// Layout describes titles and axes
type Layout struct {
	Title       string       `json:"title"`
	XAxis       Axis         `json:"xaxis"`
	YAxis       Axis         `json:"yaxis"`
	YAxis2      *Axis        `json:"yaxis2,omitempty"`
	Template    string       `json:"template"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// HasData reports whether any trace carries at least one point
func (f *Figure) HasData() bool {
	for _, t := range f.Data {
		if len(t.Y) > 0 {
			return true
		}
	}
	return false
}

func emptyFigure(title string) *Figure {
	return &Figure{
		Layout: Layout{
			Title:       title,
			Template:    template,
			Annotations: []Annotation{{Text: "No data available"}},
		},
	}
}

// YearlyAveragesFigure plots yearly averages as bars with the fitted trend as a dashed line
func YearlyAveragesFigure(report *models.GlobalTrendsReport) *Figure {
	title := "Yearly Averages"
	if report == nil || len(report.YearlyAverages) == 0 {
		return emptyFigure(title)
	}

	x := make([]interface{}, len(report.YearlyAverages))
	y := make([]float64, len(report.YearlyAverages))
	for i, ya := range report.YearlyAverages {
		x[i] = ya.Year
		y[i] = ya.AverageValue
	}

	fig := &Figure{
		Data: []Trace{{
			Type:   "bar",
			Name:   "Average Value",
			X:      x,
			Y:      y,
			Marker: &Marker{Color: barColor, Line: &Line{Color: barLineColor, Width: 1}},
		}},
		Layout: Layout{
			Title:    title,
			XAxis:    Axis{Title: "Year"},
			YAxis:    Axis{Title: report.MetricUsed},
			Template: template,
		},
	}

	if report.Trend != nil {
		trend := make([]float64, len(report.YearlyAverages))
		for i, ya := range report.YearlyAverages {
			trend[i] = report.Trend.Intercept + report.Trend.Slope*float64(ya.Year)
		}
		fig.Data = append(fig.Data, Trace{
			Type: "scatter",
			Mode: "lines",
			Name: "Trend",
			X:    x,
			Y:    trend,
			Line: &Line{Color: trendColor, Dash: "dash"},
		})
	}

	return fig
}

// SourcesTimeseriesFigure plots one line per energy source, sources in name order
func SourcesTimeseriesFigure(report *models.EnergySourcesReport) *Figure {
	title := "Energy Sources Over Time"
	if report == nil || len(report.TimeseriesBySource) == 0 {
		return emptyFigure(title)
	}

	sources := make([]string, 0, len(report.TimeseriesBySource))
	for source := range report.TimeseriesBySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	fig := &Figure{
		Layout: Layout{
			Title:    title,
			XAxis:    Axis{Title: "Year"},
			YAxis:    Axis{Title: report.ValueColumn},
			Template: template,
		},
	}

	for _, source := range sources {
		points := report.TimeseriesBySource[source]
		x := make([]interface{}, len(points))
		y := make([]float64, len(points))
		for i, p := range points {
			x[i] = p.Year
			y[i] = p.Value
		}
		fig.Data = append(fig.Data, Trace{Type: "scatter", Mode: "lines+markers", Name: source, X: x, Y: y})
	}

	return fig
}

// LeadingRegionsFigure plots the leading regions by current value as bars
func LeadingRegionsFigure(report *models.RegionsRankingReport) *Figure {
	title := "Leading Regions"
	if report == nil || len(report.LeadingByValue) == 0 {
		return emptyFigure(title)
	}

	x := make([]interface{}, len(report.LeadingByValue))
	y := make([]float64, len(report.LeadingByValue))
	for i, e := range report.LeadingByValue {
		x[i] = e.Region
		y[i] = e.CurrentValue
	}

	return &Figure{
		Data: []Trace{{
			Type:   "bar",
			Name:   "Current Value",
			X:      x,
			Y:      y,
			Marker: &Marker{Color: barColor, Line: &Line{Color: barLineColor, Width: 1}},
		}},
		Layout: Layout{
			Title:    title,
			XAxis:    Axis{Title: "Region"},
			YAxis:    Axis{Title: report.MetricUsed},
			Template: template,
		},
	}
}

// ComparisonFigure plots the yearly renewable and indicator means on two y axes
func ComparisonFigure(report *models.CorrelationReport) *Figure {
	title := "Renewable Share vs Indicator"
	if report == nil || len(report.YearlyAverages) == 0 {
		return emptyFigure(title)
	}

	x := make([]interface{}, len(report.YearlyAverages))
	renewable := make([]float64, len(report.YearlyAverages))
	indicator := make([]float64, len(report.YearlyAverages))
	for i, ya := range report.YearlyAverages {
		x[i] = ya.Year
		renewable[i] = ya.RenewableAvg
		indicator[i] = ya.IndicatorAvg
	}

	return &Figure{
		Data: []Trace{
			{Type: "scatter", Mode: "lines+markers", Name: report.ValueColumn, X: x, Y: renewable, Line: &Line{Color: barLineColor}},
			{Type: "scatter", Mode: "lines+markers", Name: report.IndicatorType, X: x, Y: indicator, YAxis: "y2", Line: &Line{Color: indicatorColor}},
		},
		Layout: Layout{
			Title:    fmt.Sprintf("%s vs %s", report.ValueColumn, report.IndicatorType),
			XAxis:    Axis{Title: "Year"},
			YAxis:    Axis{Title: report.ValueColumn},
			YAxis2:   &Axis{Title: report.IndicatorType, Overlaying: "y", Side: "right"},
			Template: template,
		},
	}
}

// ForReport returns the companion figure of a report and the response field it is attached under
func ForReport(report interface{}) (*Figure, string, error) {
	switch r := report.(type) {
	case *models.GlobalTrendsReport:
		return YearlyAveragesFigure(r), "yearly_averages_plot", nil
	case *models.EnergySourcesReport:
		return SourcesTimeseriesFigure(r), "timeseries_plot", nil
	case *models.RegionsRankingReport:
		return LeadingRegionsFigure(r), "ranking_plot", nil
	case *models.CorrelationReport:
		return ComparisonFigure(r), "yearly_averages_plot", nil
	default:
		return nil, "", fmt.Errorf("no chart for report type %T", report)
	}
}
