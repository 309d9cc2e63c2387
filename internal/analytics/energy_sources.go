package analytics

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"renewables-analytics/internal/models"
)

// sourceColumn returns the categorical column describing the energy source
func sourceColumn(ds *models.Dataset) (string, bool) {
	for _, col := range []string{models.ColumnSource, models.ColumnBalanceItem} {
		if ds.HasColumn(col) {
			return col, true
		}
	}
	return "", false
}

// energyColumn picks the value compared across sources: the explicit column,
// otherwise energy_balance, otherwise the primary metric.
func energyColumn(ds *models.Dataset, explicit string) (string, error) {
	if explicit == "" && ds.HasColumn(models.ColumnEnergyBalance) {
		return models.ColumnEnergyBalance, nil
	}
	return resolveValueColumn(ds, explicit)
}

// BuildEnergySources summarises the energy value per source and, when the
// renewable share is available, cross-references it for each source.
func BuildEnergySources(ds *models.Dataset, req models.AnalysisRequest) (*models.EnergySourcesReport, error) {
	if ds.Len() == 0 {
		return nil, models.NoDataError()
	}

	srcCol, ok := sourceColumn(ds)
	if !ok {
		return nil, &models.AnalysisError{
			Message:          "Energy source column (siec or nrg_bal) not found in dataset",
			AvailableColumns: ds.Columns(),
		}
	}

	valueCol, err := energyColumn(ds, req.ValueColumn)
	if err != nil {
		return nil, err
	}

	renewableAvailable := ds.HasColumn(models.ColumnRenewablePct)
	crossReference := renewableAvailable && valueCol != models.ColumnRenewablePct

	bySource := NewGroup[string]()
	bySourceYear := make(map[string]*Group[int])
	sourceKeys := make(map[string]map[regionYear]struct{})
	renewableByKey := NewGroupFunc[regionYear](compareRegionYear)

	for _, r := range filterRecords(ds, req) {
		key := regionYear{Region: r.Region, Year: r.Year}
		if crossReference {
			renewableByKey.Add(key, r.Value(models.ColumnRenewablePct))
		}

		src := r.Category(srcCol)
		v := r.Value(valueCol)
		if src == nil || *src == "" || v == nil {
			continue
		}

		bySource.Add(*src, v)
		if bySourceYear[*src] == nil {
			bySourceYear[*src] = NewGroup[int]()
			sourceKeys[*src] = make(map[regionYear]struct{})
		}
		bySourceYear[*src].Add(r.Year, v)
		sourceKeys[*src][key] = struct{}{}
	}

	if bySource.Len() == 0 {
		return nil, models.NoDataError()
	}

	summaries := bySource.Summaries()
	sources := make([]models.SourceSummary, 0, len(summaries))
	timeseries := make(map[string][]models.TimePoint, len(summaries))

	for _, s := range summaries {
		summary := models.SourceSummary{
			Source:     s.Key,
			Average:    s.Mean,
			Total:      s.Sum,
			Min:        s.Min,
			Max:        s.Max,
			DataPoints: s.Count,
		}
		if crossReference {
			summary.AvgRenewablePct = meanOverKeys(renewableByKey, sourceKeys[s.Key])
		}
		sources = append(sources, summary)

		yearly := bySourceYear[s.Key].Summaries()
		points := make([]models.TimePoint, len(yearly))
		for i, y := range yearly {
			points[i] = models.TimePoint{Year: y.Key, Value: y.Mean}
		}
		timeseries[s.Key] = points
	}

	return &models.EnergySourcesReport{
		Sources:               sources,
		TimeseriesBySource:    timeseries,
		SourceColumn:          srcCol,
		ValueColumn:           valueCol,
		RenewablePctAvailable: renewableAvailable,
	}, nil
}

// meanOverKeys averages the per-key means of g over keys; keys without values are skipped
func meanOverKeys(g *Group[regionYear], keys map[regionYear]struct{}) *float64 {
	ordered := make([]regionYear, 0, len(keys))
	for key := range keys {
		ordered = append(ordered, key)
	}
	slices.SortFunc(ordered, compareRegionYear)

	means := make([]float64, 0, len(ordered))
	for _, key := range ordered {
		if m, ok := g.Mean(key); ok {
			means = append(means, m)
		}
	}

	if len(means) == 0 {
		return nil
	}
	m := stat.Mean(means, nil)
	return &m
}
