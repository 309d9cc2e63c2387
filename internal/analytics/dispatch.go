package analytics

import (
	"renewables-analytics/internal/models"
)

// Compute validates req and runs the report it names.
// The result is one of the *models.*Report types, or nil with an error.
func Compute(ds *models.Dataset, req models.AnalysisRequest) (interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		report interface{}
		err    error
	)

	switch req.Report {
	case models.ReportGlobalTrends:
		report, err = BuildGlobalTrends(ds, req)
	case models.ReportEnergySources:
		report, err = BuildEnergySources(ds, req)
	case models.ReportRegionsRanking:
		report, err = BuildRegionsRanking(ds, req)
	case models.ReportCorrelation:
		report, err = BuildCorrelation(ds, req)
	}

	if err != nil {
		return nil, err
	}
	return report, nil
}
