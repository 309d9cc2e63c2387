package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"renewables-analytics/internal/models"
)

func f64(v float64) *float64 { return &v }

func readBack(t *testing.T, report interface{}) *excelize.File {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWrite_GlobalTrends(t *testing.T) {
	f := readBack(t, &models.GlobalTrendsReport{
		TrendDirection: "stable",
		YearlyAverages: []models.YearlyAverage{{Year: 2019, AverageValue: 0}, {Year: 2020, AverageValue: 4}},
		YearOverYearChange: []models.YearOverYearChange{
			{FromYear: 2019, ToYear: 2020, FromValue: 0, ToValue: 4},
		},
		TopRegions: []models.RegionAverage{{Region: "SE", Average: 60.1}},
		Period:     models.Period{From: 2019, To: 2020},
		MetricUsed: "renewable_pct",
	})

	assert.Equal(t, []string{"Summary", "Yearly Averages", "Year over Year", "Top Regions"}, f.GetSheetList())

	v, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "renewable_pct", v)

	v, err = f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = f.GetCellValue("Yearly Averages", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2020", v)

	v, err = f.GetCellValue("Year over Year", "E2")
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = f.GetCellValue("Top Regions", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Region", v)
}

func TestWrite_Ranking(t *testing.T) {
	f := readBack(t, &models.RegionsRankingReport{
		LeadingByValue: []models.RankingEntry{{Region: "SE", CurrentValue: 60, GrowthRate: f64(1.5), DataPoints: 3}},
		TotalRegions:   1,
	})

	assert.Equal(t, []string{"Leading", "Fastest Growing", "Lagging"}, f.GetSheetList())

	v, err := f.GetCellValue("Leading", "C2")
	require.NoError(t, err)
	assert.Equal(t, "1.5", v)

	v, err = f.GetCellValue("Leading", "G2")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestWrite_EnergySourcesAndCorrelation(t *testing.T) {
	f := readBack(t, &models.EnergySourcesReport{
		Sources: []models.SourceSummary{{Source: "Wind", Average: 2, Total: 4, Min: 1, Max: 3, DataPoints: 2}},
		TimeseriesBySource: map[string][]models.TimePoint{
			"Wind":  {{Year: 2020, Value: 2}},
			"Hydro": {{Year: 2020, Value: 5}},
		},
	})
	v, err := f.GetCellValue("Timeseries", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Hydro", v)

	f = readBack(t, &models.CorrelationReport{IndicatorType: "gdp", CorrelationStrength: "none"})
	assert.Equal(t, []string{"Summary", "Regional", "Yearly Averages"}, f.GetSheetList())
}

func TestWrite_UnknownReport(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, struct{}{}))
}
