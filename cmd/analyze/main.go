// Command analyze runs the second pipeline stage over the per-trip summary
// file: correlation exploration, OLS models with VIF diagnostics, and a
// regression random forest on a fixed-seed holdout split. Figures land in the
// configured plot directory; fit statistics go to stdout.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/tripgrid/trip-weather-etl/internal/analysis"
	"github.com/tripgrid/trip-weather-etl/internal/analysis/charts"
	"github.com/tripgrid/trip-weather-etl/internal/config"
	"github.com/tripgrid/trip-weather-etl/internal/csvio"
	"github.com/tripgrid/trip-weather-etl/internal/observability"
)

// olsSubsets are the predictor combinations fitted against trip distance,
// from single-variable up to the full weather-plus-duration model.
var olsSubsets = [][]string{
	{analysis.ColTempC},
	{analysis.ColTempC, analysis.ColWindMPH},
	{analysis.ColTempC, analysis.ColWindMPH, analysis.ColAerosol},
	{analysis.ColTempC, analysis.ColWindMPH, analysis.ColAerosol, analysis.ColDuration},
}

// forestPredictors are the weather variables feeding the random forest.
var forestPredictors = []string{analysis.ColTempC, analysis.ColWindMPH, analysis.ColAerosol}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	summaries, err := csvio.ReadSummaries(cfg.Files.Summary)
	if err != nil {
		return err
	}
	logger.Info("summaries loaded", "trips", len(summaries), "path", cfg.Files.Summary)

	allCols := []string{
		analysis.ColTripCount, analysis.ColTempC, analysis.ColWindMPH,
		analysis.ColAerosol, analysis.ColDuration, analysis.ColDistance,
	}
	data, err := analysis.FromSummaries(summaries, allCols)
	if err != nil {
		return err
	}
	logger.Info("complete cases extracted", "rows", data.Len(), "of", len(summaries))

	printCorrelations(data)

	if err := renderExploratory(cfg.Analyze.PlotDir, data); err != nil {
		return err
	}

	distance, err := data.Column(analysis.ColDistance)
	if err != nil {
		return err
	}

	var lastFit *analysis.OLSFit
	for _, predictors := range olsSubsets {
		X, err := data.Rows(predictors)
		if err != nil {
			return err
		}
		fit, err := analysis.FitOLS(analysis.ColDistance, predictors, X, distance)
		if err != nil {
			return err
		}
		printOLS(fit)
		if len(predictors) >= 2 {
			vif, err := analysis.VIF(predictors, X)
			if err != nil {
				return err
			}
			printVIF(predictors, vif)
		}
		lastFit = fit
	}

	if lastFit != nil {
		if err := charts.Residuals(cfg.Analyze.PlotDir, "ols_residuals", lastFit.Fitted, lastFit.Residuals); err != nil {
			return err
		}
		if err := charts.QQ(cfg.Analyze.PlotDir, "ols_qq", lastFit.Residuals); err != nil {
			return err
		}
	}

	return runForest(cfg, logger, data, distance)
}

func runForest(cfg *config.Config, logger *slog.Logger, data analysis.Dataset, distance []float64) error {
	X, err := data.Rows(forestPredictors)
	if err != nil {
		return err
	}

	trainIdx, testIdx := analysis.TrainTestSplit(len(distance), cfg.Analyze.TestFrac, cfg.Analyze.Seed)
	trainX, testX := analysis.Take(X, trainIdx), analysis.Take(X, testIdx)
	trainY, testY := analysis.Take(distance, trainIdx), analysis.Take(distance, testIdx)
	logger.Info("split", "train", len(trainIdx), "test", len(testIdx), "seed", cfg.Analyze.Seed)

	fc := analysis.DefaultForestConfig()
	fc.Trees = cfg.Analyze.Trees
	fc.Seed = cfg.Analyze.Seed
	forest, err := analysis.TrainForest(trainX, trainY, fc)
	if err != nil {
		return err
	}

	pred := forest.PredictAll(testX)
	fmt.Printf("\n=== random forest (distance ~ weather, %d trees) ===\n", fc.Trees)
	fmt.Printf("test RMSE: %.4f km\n", analysis.RMSE(testY, pred))
	fmt.Printf("test R²:   %.4f\n", analysis.R2(testY, pred))

	importance := forest.PermutationImportance(testX, testY, cfg.Analyze.Seed)
	fmt.Println("permutation importance (RMSE increase):")
	for i, name := range forestPredictors {
		fmt.Printf("  %-22s %.4f\n", name, importance[i])
	}

	return charts.Importance(cfg.Analyze.PlotDir, "forest_importance", forestPredictors, importance)
}

func renderExploratory(dir string, data analysis.Dataset) error {
	if err := charts.EnsureDir(dir); err != nil {
		return err
	}

	distance, err := data.Column(analysis.ColDistance)
	if err != nil {
		return err
	}
	if err := charts.Histogram(dir, "distance_hist", distance, "Trip distance", "km"); err != nil {
		return err
	}

	scatters := []struct {
		col, name, label string
	}{
		{analysis.ColTempC, "distance_vs_temp", "mean temperature (°C)"},
		{analysis.ColWindMPH, "distance_vs_wind", "mean wind speed (mph)"},
		{analysis.ColAerosol, "distance_vs_aerosol", "mean aerosol index"},
		{analysis.ColDuration, "distance_vs_duration", "mean duration (min)"},
	}
	for _, s := range scatters {
		xs, err := data.Column(s.col)
		if err != nil {
			return err
		}
		if err := charts.Scatter(dir, s.name, xs, distance, "Trip distance vs "+s.label, s.label, "distance (km)"); err != nil {
			return err
		}
	}
	return nil
}

func printCorrelations(data analysis.Dataset) {
	corr := analysis.CorrelationMatrix(data)

	fmt.Println("=== correlation matrix ===")
	fmt.Printf("%-22s", "")
	for _, n := range data.Names {
		fmt.Printf("%12s", shorten(n))
	}
	fmt.Println()
	for i, n := range data.Names {
		fmt.Printf("%-22s", n)
		for j := range data.Names {
			fmt.Printf("%12.3f", corr.At(i, j))
		}
		fmt.Println()
	}
}

func printOLS(fit *analysis.OLSFit) {
	fmt.Printf("\n=== OLS: %s ~ %v ===\n", fit.Target, fit.Predictors)
	fmt.Printf("intercept: %.4f\n", fit.Intercept)
	for i, name := range fit.Predictors {
		fmt.Printf("  %-22s %.4f\n", name, fit.Coef[i])
	}
	fmt.Printf("R²: %.4f  adj. R²: %.4f  RMSE: %.4f\n", fit.R2, fit.AdjR2, fit.RMSE)
}

func printVIF(predictors []string, vif map[string]float64) {
	names := append([]string(nil), predictors...)
	sort.Strings(names)
	fmt.Println("VIF:")
	for _, n := range names {
		fmt.Printf("  %-22s %.2f\n", n, vif[n])
	}
}

func shorten(name string) string {
	if len(name) > 11 {
		return name[:11]
	}
	return name
}
