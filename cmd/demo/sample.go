package main

import "renewables-analytics/internal/models"

// sampleRegion seeds one synthetic region of the demo dataset
type sampleRegion struct {
	code       string
	baseShare  float64
	shareTrend float64
	gdp        float64
	population float64
}

var sampleRegions = []sampleRegion{
	{code: "AT", baseShare: 30, shareTrend: 0.9, gdp: 310e3, population: 8.4e6},
	{code: "DE", baseShare: 11, shareTrend: 1.1, gdp: 2600e3, population: 81e6},
	{code: "DK", baseShare: 22, shareTrend: 1.6, gdp: 250e3, population: 5.6e6},
	{code: "ES", baseShare: 14, shareTrend: 0.8, gdp: 1080e3, population: 46e6},
	{code: "FR", baseShare: 12, shareTrend: 0.6, gdp: 2000e3, population: 65e6},
	{code: "PL", baseShare: 9, shareTrend: 0.4, gdp: 360e3, population: 38e6},
	{code: "SE", baseShare: 46, shareTrend: 0.7, gdp: 390e3, population: 9.4e6},
	{code: "HU", baseShare: 13, shareTrend: -0.1, gdp: 100e3, population: 9.9e6},
}

var sampleSources = []struct {
	name  string
	share float64
}{
	{"Solar photovoltaic", 0.10},
	{"Wind", 0.25},
	{"Hydro", 0.35},
	{"Primary solid biofuels", 0.30},
}

// sampleRecords builds a deterministic dataset: one aggregate row per region and
// year carrying the renewable share and indicators, plus one energy balance row
// per source and a Total row.
func sampleRecords(fromYear, toYear int) []models.Record {
	var records []models.Record
	for i, region := range sampleRegions {
		for year := fromYear; year <= toYear; year++ {
			step := float64(year - fromYear)
			wobble := float64((year*7+i*3)%5-2) * 0.3

			share := region.baseShare + region.shareTrend*step + wobble
			gdp := region.gdp * (1 + 0.015*step)
			population := region.population * (1 + 0.002*step)
			records = append(records, models.Record{
				Region:       region.code,
				Year:         year,
				RenewablePct: &share,
				GDP:          &gdp,
				Population:   &population,
			})

			total := region.population / 1e4 * share / 10
			for j, src := range sampleSources {
				source := src.name
				value := total * src.share * (1 + 0.02*float64(j)*step)
				records = append(records, models.Record{
					Region:        region.code,
					Year:          year,
					Source:        &source,
					EnergyBalance: &value,
				})
			}

			source := "Total"
			records = append(records, models.Record{
				Region:        region.code,
				Year:          year,
				Source:        &source,
				EnergyBalance: &total,
			})
		}
	}
	return records
}
