// Package analytics computes the renewable-energy reports from an in-memory dataset.
// Every builder is a pure function of its inputs and safe for concurrent use.
package analytics

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"renewables-analytics/internal/models"
)

// Trend directions
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Correlation strengths
const (
	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
	StrengthWeak     = "weak"
	StrengthNone     = "none"
)

const trendThreshold = 0.1

// LinearRegression fits y = intercept + slope*x by ordinary least squares.
// Points with a NaN or infinite coordinate are skipped. It returns nil when fewer than two
// valid points remain or all valid x are equal. RSquared is nil when y is constant.
func LinearRegression(xs, ys []float64) *models.TrendLine {
	n := min(len(xs), len(ys))
	x := make([]float64, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if !models.IsFinite(xs[i]) || !models.IsFinite(ys[i]) {
			continue
		}
		x = append(x, xs[i])
		y = append(y, ys[i])
	}

	if len(x) < 2 || stat.Variance(x, nil) == 0 {
		return nil
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	if !models.IsFinite(slope) || !models.IsFinite(intercept) {
		return nil
	}
	trend := &models.TrendLine{Slope: slope, Intercept: intercept}

	if stat.Variance(y, nil) > 0 {
		r2 := stat.RSquared(x, y, nil, intercept, slope)
		if models.IsFinite(r2) {
			trend.RSquared = &r2
		}
	}

	return trend
}

// ClassifyTrend maps a slope to a trend direction
func ClassifyTrend(slope float64) string {
	switch {
	case slope > trendThreshold:
		return TrendIncreasing
	case slope < -trendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// TrendDirection classifies a fitted line; a missing line is stable
func TrendDirection(trend *models.TrendLine) string {
	if trend == nil {
		return TrendStable
	}
	return ClassifyTrend(trend.Slope)
}

// Pearson returns the correlation coefficient of a and b over the indices where
// both are defined. It returns nil for fewer than two pairs or a constant series.
func Pearson(a, b []float64) *float64 {
	n := min(len(a), len(b))
	x := make([]float64, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if !models.IsFinite(a[i]) || !models.IsFinite(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}

	if len(x) < 2 || stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return nil
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return nil
	}
	r = math.Max(-1, math.Min(1, r))
	return &r
}

// ClassifyStrength maps a correlation coefficient to a strength label
func ClassifyStrength(r *float64) string {
	if r == nil || math.IsNaN(*r) {
		return StrengthNone
	}

	abs := math.Abs(*r)
	switch {
	case abs > 0.7:
		return StrengthStrong
	case abs > 0.4:
		return StrengthModerate
	case abs > 0:
		return StrengthWeak
	default:
		return StrengthNone
	}
}

// PercentChange returns (last-first)/first*100, or nil for a zero baseline
func PercentChange(first, last float64) *float64 {
	if first == 0 || !models.IsFinite(first) || !models.IsFinite(last) {
		return nil
	}
	pct := (last - first) / first * 100
	if !models.IsFinite(pct) {
		return nil
	}
	return &pct
}

// Summary aggregates the non-null values of one group
type Summary[K comparable] struct {
	Key   K
	Count int
	Mean  float64
	Sum   float64
	Min   float64
	Max   float64
}

// Group collects non-null values by key and iterates keys in a fixed order
type Group[K comparable] struct {
	values  map[K][]float64
	compare func(a, b K) int
}

// NewGroup creates a group ordered by the natural order of K
func NewGroup[K cmp.Ordered]() *Group[K] {
	return NewGroupFunc[K](cmp.Compare[K])
}

// NewGroupFunc creates a group ordered by compare
func NewGroupFunc[K comparable](compare func(a, b K) int) *Group[K] {
	return &Group[K]{values: make(map[K][]float64), compare: compare}
}

// Add records v under key. Nil, NaN and infinite values are absent data and ignored.
func (g *Group[K]) Add(key K, v *float64) {
	if v == nil || !models.IsFinite(*v) {
		return
	}
	g.values[key] = append(g.values[key], *v)
}

// AddValue records a plain value under key
func (g *Group[K]) AddValue(key K, v float64) {
	g.Add(key, &v)
}

// Len returns the number of non-empty groups
func (g *Group[K]) Len() int {
	return len(g.values)
}

// Keys returns the group keys in order
func (g *Group[K]) Keys() []K {
	keys := make([]K, 0, len(g.values))
	for k := range g.values {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, g.compare)
	return keys
}

// Values returns the values recorded under key, in insertion order
func (g *Group[K]) Values(key K) []float64 {
	return g.values[key]
}

// Mean returns the mean of key's values
func (g *Group[K]) Mean(key K) (float64, bool) {
	vals := g.values[key]
	if len(vals) == 0 {
		return 0, false
	}
	return stat.Mean(vals, nil), true
}

// Summarize aggregates key's values
func (g *Group[K]) Summarize(key K) (Summary[K], bool) {
	vals := g.values[key]
	if len(vals) == 0 {
		return Summary[K]{}, false
	}

	sum := floats.Sum(vals)
	return Summary[K]{
		Key:   key,
		Count: len(vals),
		Mean:  sum / float64(len(vals)),
		Sum:   sum,
		Min:   floats.Min(vals),
		Max:   floats.Max(vals),
	}, true
}

// Summaries aggregates every group in key order
func (g *Group[K]) Summaries() []Summary[K] {
	keys := g.Keys()
	out := make([]Summary[K], 0, len(keys))
	for _, k := range keys {
		if s, ok := g.Summarize(k); ok {
			out = append(out, s)
		}
	}
	return out
}
