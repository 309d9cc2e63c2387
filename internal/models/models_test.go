package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }
func year(v int) *int        { return &v }

func TestResolveNumericColumn(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "schema column", input: "gdp", want: ColumnGDP, wantOK: true},
		{name: "eurostat alias", input: "OBS_VALUE_nrg_ind_ren", want: ColumnRenewablePct, wantOK: true},
		{name: "balance alias", input: "OBS_VALUE_nrg_bal", want: ColumnEnergyBalance, wantOK: true},
		{name: "mixed case with spaces", input: "  Population ", want: ColumnPopulation, wantOK: true},
		{name: "categorical column is not numeric", input: "siec", wantOK: false},
		{name: "unknown", input: "temperature", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveNumericColumn(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDataset_Columns(t *testing.T) {
	ds := NewDataset([]Record{
		{Region: "AT", Year: 2020, RenewablePct: f64(33.6)},
		{Region: "DE", Year: 2020, GDP: f64(3400), Source: str("")},
		{Region: "FR", Year: 2021, BalanceItem: str("FC_E")},
	})

	assert.Equal(t, []string{"region", "year", "nrg_bal", "renewable_pct", "gdp"}, ds.Columns())
	assert.True(t, ds.HasColumn(ColumnGDP))
	assert.False(t, ds.HasColumn(ColumnSource))
	assert.False(t, ds.HasColumn(ColumnPopulation))
}

func TestDataset_ColumnsEmpty(t *testing.T) {
	var ds *Dataset
	assert.Equal(t, []string{"region", "year"}, ds.Columns())
	assert.Equal(t, 0, ds.Len())
	assert.Empty(t, ds.Regions())
}

func TestDataset_Regions(t *testing.T) {
	ds := NewDataset([]Record{
		{Region: "SE", Year: 2019},
		{Region: "AT", Year: 2019},
		{Region: "SE", Year: 2020},
	})

	assert.Equal(t, []string{"AT", "SE"}, ds.Regions())
}

func TestRecord_Value(t *testing.T) {
	r := Record{RenewablePct: f64(12), EnergyBalance: f64(5), GDP: f64(100), Population: f64(9)}

	assert.Equal(t, 12.0, *r.Value(ColumnRenewablePct))
	assert.Equal(t, 5.0, *r.Value(ColumnEnergyBalance))
	assert.Equal(t, 100.0, *r.Value(ColumnGDP))
	assert.Equal(t, 9.0, *r.Value(ColumnPopulation))
	assert.Nil(t, r.Value(ColumnRegion))
}

func TestRecord_ValueNonFinite(t *testing.T) {
	for name, v := range map[string]float64{
		"NaN":  math.NaN(),
		"+Inf": math.Inf(1),
		"-Inf": math.Inf(-1),
	} {
		t.Run(name, func(t *testing.T) {
			r := Record{RenewablePct: f64(v), GDP: f64(v)}
			assert.Nil(t, r.Value(ColumnRenewablePct))
			assert.Nil(t, r.Value(ColumnGDP))
			assert.False(t, IsFinite(v))
		})
	}
	assert.True(t, IsFinite(-0.5))
}

func TestDataset_NonFiniteColumnIsMissing(t *testing.T) {
	ds := NewDataset([]Record{
		{Region: "AT", Year: 2020, RenewablePct: f64(12), GDP: f64(math.NaN())},
		{Region: "DE", Year: 2020, RenewablePct: f64(20), GDP: f64(math.Inf(1))},
	})

	assert.Equal(t, []string{"region", "year", "renewable_pct"}, ds.Columns())
	assert.True(t, ds.HasColumn(ColumnRenewablePct))
	assert.False(t, ds.HasColumn(ColumnGDP))

	err := MissingColumnError(ColumnGDP, ds.Columns())
	assert.Equal(t, `Column "gdp" not found in dataset`, err.Message)
	assert.Equal(t, []string{"region", "year", "renewable_pct"}, err.AvailableColumns)
}

func TestDataset_ColumnsComputedOnce(t *testing.T) {
	ds := NewDataset([]Record{{Region: "AT", Year: 2020, RenewablePct: f64(12)}})

	first := ds.Columns()
	first[0] = "changed"
	assert.Equal(t, []string{"region", "year", "renewable_pct"}, ds.Columns())

	// Records are read-only once columns are known
	ds.Records[0].GDP = f64(100)
	assert.False(t, ds.HasColumn(ColumnGDP))
}

func TestAnalysisRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       AnalysisRequest
		wantField string
	}{
		{name: "minimal request", req: AnalysisRequest{Report: ReportGlobalTrends}},
		{
			name: "full request",
			req: AnalysisRequest{
				Report:      ReportCorrelation,
				ValueColumn: "OBS_VALUE_nrg_ind_ren",
				YearFrom:    year(2010),
				YearTo:      year(2020),
				Country:     "AT",
				Indicator:   "gdp",
			},
		},
		{name: "unknown report", req: AnalysisRequest{Report: "forecast"}, wantField: "report"},
		{name: "year too early", req: AnalysisRequest{Report: ReportCorrelation, YearFrom: year(1800)}, wantField: "year_from"},
		{name: "year too late", req: AnalysisRequest{Report: ReportCorrelation, YearTo: year(2200)}, wantField: "year_to"},
		{
			name:      "inverted range",
			req:       AnalysisRequest{Report: ReportRegionsRanking, YearFrom: year(2020), YearTo: year(2010)},
			wantField: "year_from",
		},
		{name: "unknown column", req: AnalysisRequest{Report: ReportEnergySources, ValueColumn: "wind_speed"}, wantField: "value_col"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.False(t, vErr.IsTransient())
		})
	}
}

func TestAnalysisRequest_Filters(t *testing.T) {
	req := AnalysisRequest{YearFrom: year(2015), YearTo: year(2017), Country: "de"}

	assert.False(t, req.InRange(2014))
	assert.True(t, req.InRange(2015))
	assert.True(t, req.InRange(2017))
	assert.False(t, req.InRange(2018))

	assert.True(t, req.MatchesCountry("DE"))
	assert.True(t, req.MatchesCountry("DE11"))
	assert.False(t, req.MatchesCountry("AT"))
	assert.True(t, AnalysisRequest{}.MatchesCountry("AT"))

	assert.Equal(t, Period{From: 2015, To: 2017}, req.Period(2000, 2022))
	assert.Equal(t, Period{From: 2000, To: 2022}, AnalysisRequest{}.Period(2000, 2022))
}

func TestAnalysisError(t *testing.T) {
	err := MissingColumnError("gdp", []string{"region", "year"})
	assert.Contains(t, err.Error(), "gdp")
	assert.Equal(t, []string{"region", "year"}, err.AvailableColumns)
	assert.False(t, err.IsTransient())

	assert.Equal(t, "No data available for the specified period", NoDataError().Error())
}
