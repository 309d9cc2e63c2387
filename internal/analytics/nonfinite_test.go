package analytics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renewables-analytics/internal/models"
)

// withRecords returns a dataset holding the records of base followed by extra
func withRecords(base *models.Dataset, extra ...models.Record) *models.Dataset {
	records := append([]models.Record(nil), base.Records...)
	return models.NewDataset(append(records, extra...))
}

// Rows whose value is NaN or infinite must behave exactly like rows without a
// value: every builder returns the report of the clean dataset and the result
// stays JSON encodable.
func TestBuilders_IgnoreNonFiniteValues(t *testing.T) {
	nan, posInf, negInf := math.NaN(), math.Inf(1), math.Inf(-1)

	rising := models.NewDataset([]models.Record{
		{Region: "AT", Year: 2015, RenewablePct: f64(10)},
		{Region: "AT", Year: 2016, RenewablePct: f64(12)},
	})
	twoRegions := models.NewDataset([]models.Record{
		{Region: "AT", Year: 2015, RenewablePct: f64(10)},
		{Region: "BE", Year: 2016, RenewablePct: f64(5)},
	})
	correlated := correlationDataset(func(i int) float64 { return 100 + float64(i)*10 })

	tests := []struct {
		name  string
		build func(*models.Dataset) (interface{}, error)
		clean *models.Dataset
		dirty *models.Dataset
	}{
		{
			name:  "regions ranking with a NaN-only region",
			build: func(ds *models.Dataset) (interface{}, error) { return BuildRegionsRanking(ds, models.AnalysisRequest{}) },
			clean: rising,
			dirty: withRecords(rising, models.Record{Region: "BE", Year: 2015, RenewablePct: f64(nan)}),
		},
		{
			name:  "regions ranking with infinite years",
			build: func(ds *models.Dataset) (interface{}, error) { return BuildRegionsRanking(ds, models.AnalysisRequest{}) },
			clean: rising,
			dirty: withRecords(rising,
				models.Record{Region: "AT", Year: 2017, RenewablePct: f64(posInf)},
				models.Record{Region: "AT", Year: 2014, RenewablePct: f64(negInf)},
			),
		},
		{
			name:  "global trends with an infinite year",
			build: func(ds *models.Dataset) (interface{}, error) { return BuildGlobalTrends(ds, models.AnalysisRequest{}) },
			clean: twoRegions,
			dirty: withRecords(twoRegions, models.Record{Region: "AT", Year: 2016, RenewablePct: f64(posInf)}),
		},
		{
			name:  "global trends with a NaN region",
			build: func(ds *models.Dataset) (interface{}, error) { return BuildGlobalTrends(ds, models.AnalysisRequest{}) },
			clean: twoRegions,
			dirty: withRecords(twoRegions, models.Record{Region: "CZ", Year: 2015, RenewablePct: f64(nan)}),
		},
		{
			name:  "energy sources",
			build: func(ds *models.Dataset) (interface{}, error) { return BuildEnergySources(ds, models.AnalysisRequest{}) },
			clean: energyDataset(),
			dirty: withRecords(energyDataset(),
				models.Record{Region: "AT", Year: 2020, Source: str("Solar"), EnergyBalance: f64(nan)},
				models.Record{Region: "DE", Year: 2020, Source: str("Wind"), EnergyBalance: f64(posInf)},
				models.Record{Region: "DE", Year: 2020, RenewablePct: f64(negInf)},
			),
		},
		{
			name: "correlation",
			build: func(ds *models.Dataset) (interface{}, error) {
				return BuildCorrelation(ds, models.AnalysisRequest{Indicator: models.IndicatorGDP})
			},
			clean: correlated,
			dirty: withRecords(correlated,
				models.Record{Region: "AT", Year: 2014, RenewablePct: f64(20)},
				models.Record{Region: "AT", Year: 2014, GDP: f64(nan)},
				models.Record{Region: "DE", Year: 2014, RenewablePct: f64(posInf)},
				models.Record{Region: "DE", Year: 2014, GDP: f64(150)},
			),
		},
		{
			name: "yearly trends by regions",
			build: func(ds *models.Dataset) (interface{}, error) {
				return YearlyTrendsByRegions(ds, models.FilterRequest{Regions: []string{"AT", "DE"}})
			},
			clean: energyDataset(),
			dirty: withRecords(energyDataset(),
				models.Record{Region: "AT", Year: 2021, Source: str("Solar"), EnergyBalance: f64(nan)},
				models.Record{Region: "DE", Year: 2020, Source: str("Wind"), EnergyBalance: f64(posInf)},
			),
		},
		{
			name: "energy sources by regions",
			build: func(ds *models.Dataset) (interface{}, error) {
				return EnergySourcesByRegions(ds, models.FilterRequest{})
			},
			clean: energyDataset(),
			dirty: withRecords(energyDataset(),
				models.Record{Region: "AT", Year: 2020, Source: str("Hydro"), EnergyBalance: f64(negInf)},
				models.Record{Region: "DE", Year: 2020, Source: str("Wind"), EnergyBalance: f64(nan)},
			),
		},
		{
			name: "timeseries by energy type",
			build: func(ds *models.Dataset) (interface{}, error) {
				return TimeSeriesByEnergyType(ds, models.FilterRequest{EnergyType: "wind"})
			},
			clean: energyDataset(),
			dirty: withRecords(energyDataset(),
				models.Record{Region: "AT", Year: 2021, Source: str("Wind"), EnergyBalance: f64(posInf)},
				models.Record{Region: "PL", Year: 2020, Source: str("Wind"), EnergyBalance: f64(nan)},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := tt.build(tt.clean)
			require.NoError(t, err)

			var got interface{}
			require.NotPanics(t, func() { got, err = tt.build(tt.dirty) })
			require.NoError(t, err)
			assert.Equal(t, want, got)

			_, err = json.Marshal(got)
			assert.NoError(t, err)
		})
	}
}

func TestBuildRegionsRanking_NaNOnlyRegionIsSkipped(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		{Region: "AT", Year: 2015, RenewablePct: f64(10)},
		{Region: "AT", Year: 2016, RenewablePct: f64(12)},
		{Region: "BE", Year: 2015, RenewablePct: f64(math.NaN())},
	})

	var report *models.RegionsRankingReport
	var err error
	require.NotPanics(t, func() { report, err = BuildRegionsRanking(ds, models.AnalysisRequest{}) })
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalRegions)
	require.Len(t, report.LeadingByValue, 1)
	assert.Equal(t, "AT", report.LeadingByValue[0].Region)
	assert.Equal(t, 2, report.LeadingByValue[0].DataPoints)
}

func TestBuildGlobalTrends_InfiniteValueIsAbsent(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		{Region: "AT", Year: 2015, RenewablePct: f64(10)},
		{Region: "AT", Year: 2016, RenewablePct: f64(math.Inf(1))},
		{Region: "BE", Year: 2016, RenewablePct: f64(5)},
	})

	report, err := BuildGlobalTrends(ds, models.AnalysisRequest{})
	require.NoError(t, err)

	assert.Equal(t, []models.YearlyAverage{
		{Year: 2015, AverageValue: 10},
		{Year: 2016, AverageValue: 5},
	}, report.YearlyAverages)
	require.Len(t, report.TopRegions, 2)
	assert.Equal(t, models.RegionAverage{Region: "AT", Average: 10}, report.TopRegions[0])

	_, err = json.Marshal(report)
	assert.NoError(t, err)
}

func TestBuilders_OnlyNonFiniteValues(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		{Region: "AT", Year: 2015, RenewablePct: f64(math.NaN())},
		{Region: "BE", Year: 2016, RenewablePct: f64(math.Inf(-1))},
	})

	for name, build := range map[string]func() error{
		"global trends": func() error {
			_, err := BuildGlobalTrends(ds, models.AnalysisRequest{})
			return err
		},
		"regions ranking": func() error {
			_, err := BuildRegionsRanking(ds, models.AnalysisRequest{})
			return err
		},
	} {
		t.Run(name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { err = build() })

			var aErr *models.AnalysisError
			require.ErrorAs(t, err, &aErr)
			assert.Contains(t, aErr.AvailableColumns, models.ColumnRegion)
			assert.NotContains(t, aErr.AvailableColumns, models.ColumnRenewablePct)
		})
	}
}
