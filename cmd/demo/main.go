package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"renewables-analytics/internal/charts"
	"renewables-analytics/internal/export"
	"renewables-analytics/internal/models"
	"renewables-analytics/internal/repository"
	"renewables-analytics/internal/services"
	"renewables-analytics/pkg/logging"
	"renewables-analytics/pkg/metrics"
)

const rule = "════════════════════════════════════════════════════════════════"

// Computes every report over a built-in sample dataset, without a database
func main() {
	fromYear := flag.Int("from", 2010, "First year of the sample dataset")
	toYear := flag.Int("to", 2022, "Last year of the sample dataset")
	outDir := flag.String("out", "", "Directory to write chart PNGs and xlsx exports to (optional)")
	flag.Parse()

	fmt.Println(rule)
	fmt.Println("RENEWABLES ANALYTICS - REPORT DEMONSTRATION")
	fmt.Println(rule)
	fmt.Println()

	logger := logging.NewStructuredLogger("demo", "1.0.0", logging.WarnLevel)
	collector := metrics.NewCollectorWithRegistry("demo", prometheus.NewRegistry())
	ctx := context.Background()

	records := sampleRecords(*fromYear, *toYear)
	repo := repository.NewMemoryRepository(records)
	svc := services.NewAnalyticsService(repo, nil, logger, collector, services.Options{})

	regions, err := svc.Regions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list regions: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sample dataset: %d rows, %d regions, %d-%d\n\n", len(records), len(regions), *fromYear, *toYear)

	overview, err := svc.Overview(ctx, models.AnalysisRequest{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to compute overview: %v\n", err)
		os.Exit(1)
	}

	printGlobalTrends(overview.GlobalTrends)
	printEnergySources(overview.EnergySources)
	printRanking(overview.RegionsRanking)
	printCorrelation(overview.Correlation)

	for name, aErr := range overview.Errors {
		fmt.Printf("Report %s failed: %s\n", name, aErr.Message)
	}

	series, err := svc.TimeSeriesByEnergyType(ctx, models.FilterRequest{Regions: []string{"DK", "SE"}, EnergyType: "wind"})
	if err == nil {
		fmt.Println(rule)
		fmt.Println("WIND BY REGION (filtered view)")
		fmt.Println(rule)
		for _, region := range []string{"DK", "SE"} {
			points := series[region]
			if len(points) == 0 {
				continue
			}
			last := points[len(points)-1]
			fmt.Printf("  %-4s %d points, %d: %.1f\n", region, len(points), last.Year, last.Value)
		}
		fmt.Println()
	}

	if *outDir != "" {
		if err := writeArtifacts(*outDir, overview); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write artifacts: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Charts and workbooks written to %s\n\n", *outDir)
	}

	fmt.Println(rule)
	fmt.Println("DEMONSTRATION COMPLETE")
	fmt.Println(rule)
}

func formatOptional(v *float64, suffix string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%s", *v, suffix)
}

func printGlobalTrends(r *models.GlobalTrendsReport) {
	if r == nil {
		return
	}
	fmt.Println(rule)
	fmt.Println("GLOBAL TRENDS")
	fmt.Println(rule)
	fmt.Printf("Metric:          %s\n", r.MetricUsed)
	fmt.Printf("Period:          %d-%d\n", r.Period.From, r.Period.To)
	fmt.Printf("Overall growth:  %s\n", formatOptional(r.OverallGrowthRate, "%"))
	fmt.Printf("Direction:       %s\n", r.TrendDirection)
	if r.Trend != nil {
		fmt.Printf("Slope:           %.3f per year (R² %s)\n", r.Trend.Slope, formatOptional(r.Trend.RSquared, ""))
	}
	fmt.Println("Top regions:")
	for i, region := range r.TopRegions {
		fmt.Printf("  %2d. %-4s %.2f\n", i+1, region.Region, region.Average)
	}
	fmt.Println()
}

func printEnergySources(r *models.EnergySourcesReport) {
	if r == nil {
		return
	}
	fmt.Println(rule)
	fmt.Println("ENERGY SOURCES")
	fmt.Println(rule)
	for _, s := range r.Sources {
		fmt.Printf("  %-24s avg %10.2f  total %12.2f  renewable %s\n",
			s.Source, s.Average, s.Total, formatOptional(s.AvgRenewablePct, "%"))
	}
	fmt.Println()
}

func printRanking(r *models.RegionsRankingReport) {
	if r == nil {
		return
	}
	fmt.Println(rule)
	fmt.Printf("REGIONS RANKING (%d regions)\n", r.TotalRegions)
	fmt.Println(rule)
	fmt.Println("Fastest growing:")
	for i, e := range r.FastestGrowing {
		fmt.Printf("  %2d. %-4s %s per year\n", i+1, e.Region, formatOptional(e.GrowthRate, "%"))
	}
	fmt.Println("Lagging:")
	for i, e := range r.Lagging {
		fmt.Printf("  %2d. %-4s %.2f\n", i+1, e.Region, e.CurrentValue)
	}
	fmt.Println()
}

func printCorrelation(r *models.CorrelationReport) {
	if r == nil {
		return
	}
	fmt.Println(rule)
	fmt.Printf("CORRELATION WITH %s\n", r.IndicatorType)
	fmt.Println(rule)
	fmt.Printf("Overall:   %s (%s)\n", formatOptional(r.OverallCorrelation, ""), r.CorrelationStrength)
	fmt.Printf("Pairs:     %d\n", r.DataPoints)
	for _, c := range r.RegionalCorrelations {
		fmt.Printf("  %-4s %+.3f\n", c.Region, c.Correlation)
	}
	fmt.Println()
}

// writeArtifacts renders every computed report as a PNG chart and an xlsx workbook
func writeArtifacts(dir string, overview *models.Overview) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	reports := map[string]interface{}{}
	if overview.GlobalTrends != nil {
		reports[models.ReportGlobalTrends] = overview.GlobalTrends
	}
	if overview.EnergySources != nil {
		reports[models.ReportEnergySources] = overview.EnergySources
	}
	if overview.RegionsRanking != nil {
		reports[models.ReportRegionsRanking] = overview.RegionsRanking
	}
	if overview.Correlation != nil {
		reports[models.ReportCorrelation] = overview.Correlation
	}

	for name, report := range reports {
		fig, _, err := charts.ForReport(report)
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, name+".png"), func(f *os.File) error {
			return charts.RenderPNG(f, fig, charts.DefaultWidth, charts.DefaultHeight)
		}); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, name+".xlsx"), func(f *os.File) error {
			return export.Write(f, report)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
