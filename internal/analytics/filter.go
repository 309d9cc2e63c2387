package analytics

import (
	"cmp"
	"fmt"

	"renewables-analytics/internal/models"
)

// regionYear identifies all rows observed for one region in one year
type regionYear struct {
	Region string
	Year   int
}

func compareRegionYear(a, b regionYear) int {
	return cmp.Or(cmp.Compare(a.Region, b.Region), cmp.Compare(a.Year, b.Year))
}

// filterRecords returns the rows passing the request's year and country filters.
// The returned pointers alias the dataset and must not be written through.
func filterRecords(ds *models.Dataset, req models.AnalysisRequest) []*models.Record {
	if ds == nil {
		return nil
	}

	rows := make([]*models.Record, 0, len(ds.Records))
	for i := range ds.Records {
		r := &ds.Records[i]
		if !req.InRange(r.Year) || !req.MatchesCountry(r.Region) {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

// resolveValueColumn picks the value column for a request: the explicit column
// when given, otherwise renewable_pct, otherwise the first numeric column present.
func resolveValueColumn(ds *models.Dataset, explicit string) (string, error) {
	if ds.Len() == 0 {
		return "", models.NoDataError()
	}

	if explicit != "" {
		col, ok := models.ResolveNumericColumn(explicit)
		if !ok || !ds.HasColumn(col) {
			return "", models.MissingColumnError(explicit, ds.Columns())
		}
		return col, nil
	}

	for _, col := range models.NumericColumns {
		if ds.HasColumn(col) {
			return col, nil
		}
	}

	return "", &models.AnalysisError{
		Message:          "No numeric value column found in dataset",
		AvailableColumns: ds.Columns(),
	}
}

// yearSpan returns the smallest and largest year of a non-empty key list
func yearSpan(years []int) (int, int) {
	if len(years) == 0 {
		return 0, 0
	}
	return years[0], years[len(years)-1]
}

func analysisErrorf(format string, args ...interface{}) *models.AnalysisError {
	return &models.AnalysisError{Message: fmt.Sprintf(format, args...)}
}
