package analytics

import (
	"math"
	"sort"
	"strings"

	"renewables-analytics/internal/models"
)

const regionalCorrelationsLimit = 20

// resolveIndicator normalises the indicator name; empty selects gdp
func resolveIndicator(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return models.IndicatorGDP, true
	}
	for _, ind := range models.Indicators {
		if key == ind {
			return ind, true
		}
	}
	return "", false
}

// pair is the mean value and mean indicator of one region in one year
type pair struct {
	key       regionYear
	value     float64
	indicator float64
}

// BuildCorrelation correlates the selected metric with an external indicator,
// overall and per region, and fits trend lines to the yearly means of both.
func BuildCorrelation(ds *models.Dataset, req models.AnalysisRequest) (*models.CorrelationReport, error) {
	indicator, ok := resolveIndicator(req.Indicator)
	if !ok {
		return nil, analysisErrorf("Unsupported indicator %q, expected one of: %s",
			req.Indicator, strings.Join(models.Indicators, ", "))
	}
	if ds.Len() == 0 {
		return nil, models.NoDataError()
	}
	if !ds.HasColumn(indicator) {
		return nil, &models.AnalysisError{
			Message:          "Indicator column '" + indicator + "' not found in dataset",
			AvailableColumns: ds.Columns(),
		}
	}

	column, err := resolveValueColumn(ds, req.ValueColumn)
	if err != nil {
		return nil, err
	}

	pairs := pairSeries(filterRecords(ds, req), column, indicator)
	if len(pairs) == 0 {
		return nil, analysisErrorf("No correlation data available")
	}

	values := make([]float64, len(pairs))
	indicators := make([]float64, len(pairs))
	byRegion := make(map[string][]pair)
	valueByYear := NewGroup[int]()
	indicatorByYear := NewGroup[int]()

	for i, p := range pairs {
		values[i] = p.value
		indicators[i] = p.indicator
		byRegion[p.key.Region] = append(byRegion[p.key.Region], p)
		valueByYear.AddValue(p.key.Year, p.value)
		indicatorByYear.AddValue(p.key.Year, p.indicator)
	}

	overall := Pearson(values, indicators)

	years := valueByYear.Keys()
	xs := make([]float64, len(years))
	valueMeans := make([]float64, len(years))
	indicatorMeans := make([]float64, len(years))
	yearly := make([]models.CorrelationYearlyAverage, len(years))
	for i, y := range years {
		v, _ := valueByYear.Mean(y)
		ind, _ := indicatorByYear.Mean(y)
		xs[i] = float64(y)
		valueMeans[i] = v
		indicatorMeans[i] = ind
		yearly[i] = models.CorrelationYearlyAverage{Year: y, RenewableAvg: v, IndicatorAvg: ind}
	}

	return &models.CorrelationReport{
		OverallCorrelation:   overall,
		CorrelationStrength:  ClassifyStrength(overall),
		RegionalCorrelations: regionalCorrelations(byRegion, regionalCorrelationsLimit),
		YearlyAverages:       yearly,
		RenewableTrend:       LinearRegression(xs, valueMeans),
		IndicatorTrend:       LinearRegression(xs, indicatorMeans),
		IndicatorType:        indicator,
		ValueColumn:          column,
		DataPoints:           len(pairs),
	}, nil
}

// pairSeries averages value and indicator per (region, year) and keeps the keys
// where both are defined, ordered by region then year.
func pairSeries(rows []*models.Record, column, indicator string) []pair {
	valueByKey := NewGroupFunc[regionYear](compareRegionYear)
	indicatorByKey := NewGroupFunc[regionYear](compareRegionYear)
	for _, r := range rows {
		key := regionYear{Region: r.Region, Year: r.Year}
		valueByKey.Add(key, r.Value(column))
		indicatorByKey.Add(key, r.Value(indicator))
	}

	var pairs []pair
	for _, key := range valueByKey.Keys() {
		ind, ok := indicatorByKey.Mean(key)
		if !ok {
			continue
		}
		v, _ := valueByKey.Mean(key)
		pairs = append(pairs, pair{key: key, value: v, indicator: ind})
	}
	return pairs
}

// regionalCorrelations correlates each region with at least two pairs and orders
// the results by absolute coefficient, descending, ties by region name.
func regionalCorrelations(byRegion map[string][]pair, limit int) []models.CorrelationEntry {
	out := make([]models.CorrelationEntry, 0, len(byRegion))
	for region, pairs := range byRegion {
		if len(pairs) < 2 {
			continue
		}

		values := make([]float64, len(pairs))
		indicators := make([]float64, len(pairs))
		for i, p := range pairs {
			values[i] = p.value
			indicators[i] = p.indicator
		}

		r := Pearson(values, indicators)
		if r == nil {
			continue
		}
		out = append(out, models.CorrelationEntry{Region: region, Correlation: *r, DataPoints: len(pairs)})
	}

	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Correlation), math.Abs(out[j].Correlation)
		if ai != aj {
			return ai > aj
		}
		return out[i].Region < out[j].Region
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
