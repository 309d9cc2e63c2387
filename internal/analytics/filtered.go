package analytics

import (
	"fmt"
	"strings"

	"renewables-analytics/internal/models"
)

const totalSource = "Total"

// energyView is the energy balance slice selected by a FilterRequest
type energyView struct {
	rows      []*models.Record
	sourceCol string
	valueCol  string
}

// selectEnergyView keeps rows with a region, a source other than Total and an
// energy value, restricted to the requested regions, years and energy type.
func selectEnergyView(ds *models.Dataset, f models.FilterRequest) (*energyView, error) {
	if ds.Len() == 0 {
		return &energyView{}, nil
	}

	srcCol, ok := sourceColumn(ds)
	if !ok {
		return nil, &models.AnalysisError{
			Message:          "Energy source column (siec or nrg_bal) not found in dataset",
			AvailableColumns: ds.Columns(),
		}
	}

	valueCol, err := energyColumn(ds, "")
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(f.Regions))
	for _, r := range f.Regions {
		wanted[strings.ToUpper(strings.TrimSpace(r))] = struct{}{}
	}
	energyType := strings.ToLower(strings.TrimSpace(f.EnergyType))

	view := &energyView{sourceCol: srcCol, valueCol: valueCol}
	for i := range ds.Records {
		r := &ds.Records[i]
		src := r.Category(srcCol)
		if r.Region == "" || src == nil || *src == "" || *src == totalSource || r.Value(valueCol) == nil {
			continue
		}
		if !f.InRange(r.Year) {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[strings.ToUpper(r.Region)]; !ok {
				continue
			}
		}
		if energyType != "" && !strings.Contains(strings.ToLower(*src), energyType) {
			continue
		}
		view.rows = append(view.rows, r)
	}

	return view, nil
}

func regionsError(regions []string) *models.AnalysisError {
	return analysisErrorf("No data available for selected regions: %s", strings.Join(regions, ", "))
}

// YearlyTrendsByRegions returns the yearly mean energy value of each requested region
func YearlyTrendsByRegions(ds *models.Dataset, f models.FilterRequest) (models.YearlyTrendsByRegions, error) {
	view, err := selectEnergyView(ds, f)
	if err != nil {
		return nil, err
	}

	byRegion := make(map[string]*Group[int])
	for _, r := range view.rows {
		if byRegion[r.Region] == nil {
			byRegion[r.Region] = NewGroup[int]()
		}
		byRegion[r.Region].Add(r.Year, r.Value(view.valueCol))
	}

	result := make(models.YearlyTrendsByRegions, len(byRegion))
	for region, g := range byRegion {
		summaries := g.Summaries()
		points := make([]models.YearlyAverage, len(summaries))
		for i, s := range summaries {
			points[i] = models.YearlyAverage{Year: s.Key, AverageValue: s.Mean}
		}
		result[region] = points
	}

	if len(result) == 0 {
		return nil, regionsError(f.Regions)
	}
	return result, nil
}

// EnergySourcesByRegions returns the summed energy value per source for each requested region
func EnergySourcesByRegions(ds *models.Dataset, f models.FilterRequest) (models.EnergySourcesByRegions, error) {
	view, err := selectEnergyView(ds, f)
	if err != nil {
		return nil, err
	}

	byRegion := make(map[string]*Group[string])
	for _, r := range view.rows {
		if byRegion[r.Region] == nil {
			byRegion[r.Region] = NewGroup[string]()
		}
		byRegion[r.Region].Add(*r.Category(view.sourceCol), r.Value(view.valueCol))
	}

	result := make(models.EnergySourcesByRegions, len(byRegion))
	for region, g := range byRegion {
		summaries := g.Summaries()
		sources := make([]models.SourceValue, len(summaries))
		for i, s := range summaries {
			sources[i] = models.SourceValue{Source: s.Key, Value: s.Sum}
		}
		result[region] = models.RegionSources{Sources: sources}
	}

	if len(result) == 0 {
		return nil, regionsError(f.Regions)
	}
	return result, nil
}

// TimeSeriesByEnergyType returns the yearly summed value of one energy type per region.
// The energy type matches any source containing it, ignoring case.
func TimeSeriesByEnergyType(ds *models.Dataset, f models.FilterRequest) (models.TimeSeriesByRegions, error) {
	if strings.TrimSpace(f.EnergyType) == "" {
		return nil, &models.ValidationError{Field: "energy_type", Message: "energy_type is required"}
	}

	view, err := selectEnergyView(ds, f)
	if err != nil {
		return nil, err
	}

	byRegion := make(map[string]*Group[int])
	for _, r := range view.rows {
		if byRegion[r.Region] == nil {
			byRegion[r.Region] = NewGroup[int]()
		}
		byRegion[r.Region].Add(r.Year, r.Value(view.valueCol))
	}

	result := make(models.TimeSeriesByRegions, len(byRegion))
	for region, g := range byRegion {
		summaries := g.Summaries()
		points := make([]models.TimePoint, len(summaries))
		for i, s := range summaries {
			points[i] = models.TimePoint{Year: s.Key, Value: s.Sum}
		}
		result[region] = points
	}

	if len(result) == 0 {
		filters := []string{}
		if len(f.Regions) > 0 {
			filters = append(filters, "regions: "+strings.Join(f.Regions, ", "))
		}
		filters = append(filters, "energy type: "+f.EnergyType)
		return nil, &models.AnalysisError{
			Message: fmt.Sprintf("No data available for selected filters (%s)", strings.Join(filters, ", ")),
		}
	}
	return result, nil
}
