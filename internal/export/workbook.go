// Package export writes analytics reports as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"renewables-analytics/internal/models"
)

// table is one sheet of a workbook: a header row followed by data rows
type table struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// optional renders a nullable number as an empty cell when absent
func optional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

// Workbook builds an Excel workbook with one sheet per table of report
func Workbook(report interface{}) (*excelize.File, error) {
	tables, err := tablesFor(report)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", t.name, err)
		}

		if err := writeTable(f, t); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// Write encodes the workbook of report to w
func Write(w io.Writer, report interface{}) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, t table) error {
	for col, header := range t.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.name, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", header, err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(t.name, name, name, 18); err != nil {
			return err
		}
	}

	for r, row := range t.rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.name, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", t.name, cell, err)
			}
		}
	}

	return nil
}

func tablesFor(report interface{}) ([]table, error) {
	switch r := report.(type) {
	case *models.GlobalTrendsReport:
		return globalTrendsTables(r), nil
	case *models.EnergySourcesReport:
		return energySourcesTables(r), nil
	case *models.RegionsRankingReport:
		return rankingTables(r), nil
	case *models.CorrelationReport:
		return correlationTables(r), nil
	default:
		return nil, fmt.Errorf("cannot export report type %T", report)
	}
}

func globalTrendsTables(r *models.GlobalTrendsReport) []table {
	summary := table{
		name:    "Summary",
		headers: []string{"Metric", "Overall Growth Rate", "Trend Direction", "From", "To"},
		rows: [][]interface{}{
			{r.MetricUsed, optional(r.OverallGrowthRate), r.TrendDirection, r.Period.From, r.Period.To},
		},
	}

	yearly := table{name: "Yearly Averages", headers: []string{"Year", "Average Value"}}
	for _, ya := range r.YearlyAverages {
		yearly.rows = append(yearly.rows, []interface{}{ya.Year, ya.AverageValue})
	}

	changes := table{name: "Year over Year", headers: []string{"From Year", "To Year", "From Value", "To Value", "Change %"}}
	for _, c := range r.YearOverYearChange {
		changes.rows = append(changes.rows, []interface{}{c.FromYear, c.ToYear, c.FromValue, c.ToValue, optional(c.ChangePct)})
	}

	top := table{name: "Top Regions", headers: []string{"Region", "Average"}}
	for _, ra := range r.TopRegions {
		top.rows = append(top.rows, []interface{}{ra.Region, ra.Average})
	}

	return []table{summary, yearly, changes, top}
}

func energySourcesTables(r *models.EnergySourcesReport) []table {
	sources := table{
		name:    "Sources",
		headers: []string{"Source", "Average", "Total", "Min", "Max", "Data Points", "Avg Renewable %"},
	}
	for _, s := range r.Sources {
		sources.rows = append(sources.rows, []interface{}{
			s.Source, s.Average, s.Total, s.Min, s.Max, s.DataPoints, optional(s.AvgRenewablePct),
		})
	}

	names := make([]string, 0, len(r.TimeseriesBySource))
	for name := range r.TimeseriesBySource {
		names = append(names, name)
	}
	sort.Strings(names)

	series := table{name: "Timeseries", headers: []string{"Source", "Year", "Value"}}
	for _, name := range names {
		for _, p := range r.TimeseriesBySource[name] {
			series.rows = append(series.rows, []interface{}{name, p.Year, p.Value})
		}
	}

	return []table{sources, series}
}

func rankingTables(r *models.RegionsRankingReport) []table {
	headers := []string{"Region", "Current Value", "Growth Rate", "Total Change %", "First Value", "Last Value", "Data Points"}
	view := func(name string, entries []models.RankingEntry) table {
		t := table{name: name, headers: headers}
		for _, e := range entries {
			t.rows = append(t.rows, []interface{}{
				e.Region, e.CurrentValue, optional(e.GrowthRate), optional(e.TotalChangePct), e.FirstValue, e.LastValue, e.DataPoints,
			})
		}
		return t
	}

	return []table{
		view("Leading", r.LeadingByValue),
		view("Fastest Growing", r.FastestGrowing),
		view("Lagging", r.Lagging),
	}
}

func correlationTables(r *models.CorrelationReport) []table {
	summary := table{
		name:    "Summary",
		headers: []string{"Indicator", "Value Column", "Overall Correlation", "Strength", "Data Points"},
		rows: [][]interface{}{
			{r.IndicatorType, r.ValueColumn, optional(r.OverallCorrelation), r.CorrelationStrength, r.DataPoints},
		},
	}

	regional := table{name: "Regional", headers: []string{"Region", "Correlation", "Data Points"}}
	for _, e := range r.RegionalCorrelations {
		regional.rows = append(regional.rows, []interface{}{e.Region, e.Correlation, e.DataPoints})
	}

	yearly := table{name: "Yearly Averages", headers: []string{"Year", "Renewable Avg", "Indicator Avg"}}
	for _, ya := range r.YearlyAverages {
		yearly.rows = append(yearly.rows, []interface{}{ya.Year, ya.RenewableAvg, ya.IndicatorAvg})
	}

	return []table{summary, regional, yearly}
}
