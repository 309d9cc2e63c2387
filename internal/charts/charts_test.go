package charts

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renewables-analytics/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func globalTrends() *models.GlobalTrendsReport {
	return &models.GlobalTrendsReport{
		Trend: &models.TrendLine{Slope: 1, Intercept: -2000},
		YearlyAverages: []models.YearlyAverage{
			{Year: 2018, AverageValue: 18},
			{Year: 2019, AverageValue: 19.5},
			{Year: 2020, AverageValue: 20},
		},
		MetricUsed: models.ColumnRenewablePct,
	}
}

func correlation() *models.CorrelationReport {
	return &models.CorrelationReport{
		YearlyAverages: []models.CorrelationYearlyAverage{
			{Year: 2018, RenewableAvg: 20, IndicatorAvg: 30000},
			{Year: 2019, RenewableAvg: 21, IndicatorAvg: 31000},
		},
		IndicatorType: models.IndicatorGDP,
		ValueColumn:   models.ColumnRenewablePct,
	}
}

func TestYearlyAveragesFigure(t *testing.T) {
	fig := YearlyAveragesFigure(globalTrends())

	require.Len(t, fig.Data, 2)
	assert.Equal(t, "bar", fig.Data[0].Type)
	assert.Equal(t, []interface{}{2018, 2019, 2020}, fig.Data[0].X)
	assert.Equal(t, []float64{18, 19.5, 20}, fig.Data[0].Y)
	assert.Equal(t, "dash", fig.Data[1].Line.Dash)
	assert.Equal(t, []float64{18, 19, 20}, fig.Data[1].Y)
	assert.Equal(t, "renewable_pct", fig.Layout.YAxis.Title)
}

func TestEmptyFigure(t *testing.T) {
	fig := YearlyAveragesFigure(&models.GlobalTrendsReport{})

	assert.Empty(t, fig.Data)
	assert.False(t, fig.HasData())
	require.Len(t, fig.Layout.Annotations, 1)
	assert.Equal(t, "No data available", fig.Layout.Annotations[0].Text)

	err := RenderPNG(&bytes.Buffer{}, fig, DefaultWidth, DefaultHeight)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSourcesTimeseriesFigure_Order(t *testing.T) {
	fig := SourcesTimeseriesFigure(&models.EnergySourcesReport{
		TimeseriesBySource: map[string][]models.TimePoint{
			"Wind":  {{Year: 2020, Value: 3}},
			"Hydro": {{Year: 2020, Value: 1}},
			"Solar": {{Year: 2020, Value: 2}},
		},
	})

	require.Len(t, fig.Data, 3)
	assert.Equal(t, "Hydro", fig.Data[0].Name)
	assert.Equal(t, "Solar", fig.Data[1].Name)
	assert.Equal(t, "Wind", fig.Data[2].Name)
}

func TestComparisonFigure_SecondaryAxis(t *testing.T) {
	fig := ComparisonFigure(correlation())

	require.Len(t, fig.Data, 2)
	assert.Equal(t, "y2", fig.Data[1].YAxis)
	require.NotNil(t, fig.Layout.YAxis2)
	assert.Equal(t, "y", fig.Layout.YAxis2.Overlaying)

	body, err := json.Marshal(fig)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"yaxis2"`)
}

func TestForReport(t *testing.T) {
	tests := []struct {
		report interface{}
		field  string
	}{
		{globalTrends(), "yearly_averages_plot"},
		{&models.EnergySourcesReport{}, "timeseries_plot"},
		{&models.RegionsRankingReport{}, "ranking_plot"},
		{correlation(), "yearly_averages_plot"},
	}

	for _, tt := range tests {
		fig, field, err := ForReport(tt.report)
		require.NoError(t, err)
		assert.NotNil(t, fig)
		assert.Equal(t, tt.field, field)
	}

	_, _, err := ForReport("not a report")
	assert.Error(t, err)
}

func TestRenderPNG(t *testing.T) {
	figures := map[string]*Figure{
		"bars with trend": YearlyAveragesFigure(globalTrends()),
		"dual axis":       ComparisonFigure(correlation()),
		"ranking": LeadingRegionsFigure(&models.RegionsRankingReport{
			LeadingByValue: []models.RankingEntry{{Region: "SE", CurrentValue: 60}, {Region: "FI", CurrentValue: 45}},
		}),
	}

	for name, fig := range figures {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderPNG(&buf, fig, DefaultWidth, DefaultHeight))
			require.Greater(t, buf.Len(), len(pngMagic))
			assert.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
		})
	}
}
