package analytics

import (
	"sort"

	"renewables-analytics/internal/models"
)

const rankingLimit = 10

// BuildRegionsRanking computes per-region current value and growth, then orders
// the regions into leading, fastest growing and lagging views.
func BuildRegionsRanking(ds *models.Dataset, req models.AnalysisRequest) (*models.RegionsRankingReport, error) {
	column, err := resolveValueColumn(ds, req.ValueColumn)
	if err != nil {
		return nil, err
	}

	byRegion := make(map[string]*Group[int])
	for _, r := range filterRecords(ds, req) {
		v := r.Value(column)
		if v == nil {
			continue
		}
		if byRegion[r.Region] == nil {
			byRegion[r.Region] = NewGroup[int]()
		}
		byRegion[r.Region].Add(r.Year, v)
	}

	if len(byRegion) == 0 {
		return nil, models.NoDataError()
	}

	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	entries := make([]models.RankingEntry, 0, len(regions))
	for _, region := range regions {
		if entry, ok := rankRegion(region, byRegion[region]); ok {
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return nil, models.NoDataError()
	}

	return &models.RegionsRankingReport{
		LeadingByValue: leadingByValue(entries, rankingLimit),
		FastestGrowing: fastestGrowing(entries, rankingLimit),
		Lagging:        lagging(entries, rankingLimit),
		TotalRegions:   len(entries),
		MetricUsed:     column,
	}, nil
}

// rankRegion builds the ranking record of one region from its values grouped by year.
// It reports false when the region has no values.
func rankRegion(region string, byYear *Group[int]) (models.RankingEntry, bool) {
	years := byYear.Keys()
	if len(years) == 0 {
		return models.RankingEntry{}, false
	}
	first, _ := byYear.Mean(years[0])
	last, _ := byYear.Mean(years[len(years)-1])

	var xs, ys []float64
	for _, y := range years {
		for _, v := range byYear.Values(y) {
			xs = append(xs, float64(y))
			ys = append(ys, v)
		}
	}

	entry := models.RankingEntry{
		Region:       region,
		CurrentValue: last,
		FirstValue:   first,
		LastValue:    last,
		DataPoints:   len(ys),
	}

	if len(years) >= 2 {
		if trend := LinearRegression(xs, ys); trend != nil {
			slope := trend.Slope
			entry.GrowthRate = &slope
		}
		entry.TotalChangePct = PercentChange(first, last)
	}

	return entry, true
}

func leadingByValue(entries []models.RankingEntry, limit int) []models.RankingEntry {
	out := append([]models.RankingEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CurrentValue > out[j].CurrentValue
	})
	return truncate(out, limit)
}

func lagging(entries []models.RankingEntry, limit int) []models.RankingEntry {
	out := append([]models.RankingEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CurrentValue < out[j].CurrentValue
	})
	return truncate(out, limit)
}

// fastestGrowing excludes regions whose growth rate could not be computed
func fastestGrowing(entries []models.RankingEntry, limit int) []models.RankingEntry {
	out := make([]models.RankingEntry, 0, len(entries))
	for _, e := range entries {
		if e.GrowthRate != nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].GrowthRate > *out[j].GrowthRate
	})
	return truncate(out, limit)
}

func truncate(entries []models.RankingEntry, limit int) []models.RankingEntry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
