package models

import (
	"math"
	"sort"
	"strings"
	"sync"
)

// Column names of the merged dataset, in schema order.
const (
	ColumnRegion        = "region"
	ColumnYear          = "year"
	ColumnSource        = "siec"
	ColumnBalanceItem   = "nrg_bal"
	ColumnRenewablePct  = "renewable_pct"
	ColumnEnergyBalance = "energy_balance"
	ColumnGDP           = "gdp"
	ColumnPopulation    = "population"
)

// NumericColumns lists the value columns a request may select, in schema order.
var NumericColumns = []string{
	ColumnRenewablePct,
	ColumnEnergyBalance,
	ColumnGDP,
	ColumnPopulation,
}

// columnAliases maps the merged Eurostat column names to schema columns.
var columnAliases = map[string]string{
	"obs_value_nrg_ind_ren":  ColumnRenewablePct,
	"nrg_ind_ren":            ColumnRenewablePct,
	"obs_value_nrg_bal":      ColumnEnergyBalance,
	"obs_value_nama_10_gdp":  ColumnGDP,
	"nama_10_gdp":            ColumnGDP,
	"obs_value_demo_pjan":    ColumnPopulation,
	"renewable_percentage":   ColumnRenewablePct,
	"share_of_renewables":    ColumnRenewablePct,
	"renewable_energy_share": ColumnRenewablePct,
}

// ResolveNumericColumn maps a user supplied column name or alias to a numeric schema column.
func ResolveNumericColumn(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, col := range NumericColumns {
		if key == col {
			return col, true
		}
	}
	col, ok := columnAliases[key]
	return col, ok
}

// Record is one row of the cleaned, merged dataset.
// NULL values are pointers; nil means absent, never zero.
type Record struct {
	ID            int64    `json:"id" db:"id"`
	Region        string   `json:"region" db:"region"`
	Year          int      `json:"year" db:"year"`
	Source        *string  `json:"siec,omitempty" db:"siec"`
	BalanceItem   *string  `json:"nrg_bal,omitempty" db:"nrg_bal"`
	RenewablePct  *float64 `json:"renewable_pct,omitempty" db:"renewable_pct"`
	EnergyBalance *float64 `json:"energy_balance,omitempty" db:"energy_balance"`
	GDP           *float64 `json:"gdp,omitempty" db:"gdp"`
	Population    *float64 `json:"population,omitempty" db:"population"`
}

// Value returns the numeric value stored in column, or nil when absent.
// NaN and infinite values count as absent.
func (r *Record) Value(column string) *float64 {
	var v *float64
	switch column {
	case ColumnRenewablePct:
		v = r.RenewablePct
	case ColumnEnergyBalance:
		v = r.EnergyBalance
	case ColumnGDP:
		v = r.GDP
	case ColumnPopulation:
		v = r.Population
	}
	if v == nil || !IsFinite(*v) {
		return nil
	}
	return v
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Category returns the categorical value stored in column, or nil when absent.
func (r *Record) Category(column string) *string {
	switch column {
	case ColumnSource:
		return r.Source
	case ColumnBalanceItem:
		return r.BalanceItem
	default:
		return nil
	}
}

// Dataset is an in-memory, read-only view of merged records.
// Records must not be modified once Columns or HasColumn has been called.
type Dataset struct {
	Records []Record

	columnsOnce sync.Once
	columns     []string
}

// NewDataset wraps records in a Dataset.
func NewDataset(records []Record) *Dataset {
	return &Dataset{Records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Columns returns the columns that carry at least one non-null value, in schema order.
// region and year are always present. The result is computed once per dataset.
func (d *Dataset) Columns() []string {
	if d == nil {
		return scanColumns(nil)
	}
	return append([]string(nil), d.cachedColumns()...)
}

func (d *Dataset) cachedColumns() []string {
	d.columnsOnce.Do(func() {
		d.columns = scanColumns(d.Records)
	})
	return d.columns
}

func scanColumns(records []Record) []string {
	present := map[string]bool{}
	for i := range records {
		r := &records[i]
		for _, col := range []string{ColumnSource, ColumnBalanceItem} {
			if v := r.Category(col); v != nil && *v != "" {
				present[col] = true
			}
		}
		for _, col := range NumericColumns {
			if r.Value(col) != nil {
				present[col] = true
			}
		}
	}

	columns := []string{ColumnRegion, ColumnYear}
	for _, col := range []string{ColumnSource, ColumnBalanceItem, ColumnRenewablePct, ColumnEnergyBalance, ColumnGDP, ColumnPopulation} {
		if present[col] {
			columns = append(columns, col)
		}
	}
	return columns
}

// HasColumn reports whether column carries at least one non-null value.
func (d *Dataset) HasColumn(column string) bool {
	if d == nil {
		return column == ColumnRegion || column == ColumnYear
	}
	for _, col := range d.cachedColumns() {
		if col == column {
			return true
		}
	}
	return false
}

// Regions returns the distinct region codes in ascending order.
func (d *Dataset) Regions() []string {
	seen := map[string]struct{}{}
	if d != nil {
		for i := range d.Records {
			seen[d.Records[i].Region] = struct{}{}
		}
	}

	regions := make([]string, 0, len(seen))
	for region := range seen {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}
