// Package charts renders the analysis stage's exploratory and diagnostic
// figures as PNG files.
package charts

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

// EnsureDir creates the output directory for a run's figures.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// Histogram renders a value distribution with 16 bins.
func Histogram(dir, name string, values []float64, title, xlabel string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(values), 16)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", name, err)
	}
	p.Add(h)

	return save(p, dir, name)
}

// Scatter renders an x/y point cloud.
func Scatter(dir, name string, xs, ys []float64, title, xlabel, ylabel string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel

	s, err := plotter.NewScatter(xyPairs(xs, ys))
	if err != nil {
		return fmt.Errorf("scatter %s: %w", name, err)
	}
	p.Add(s, plotter.NewGrid())

	return save(p, dir, name)
}

// Residuals renders residuals against fitted values with a zero reference line.
func Residuals(dir, name string, fitted, residuals []float64) error {
	p := plot.New()
	p.Title.Text = "Residuals vs fitted"
	p.X.Label.Text = "fitted"
	p.Y.Label.Text = "residual"

	s, err := plotter.NewScatter(xyPairs(fitted, residuals))
	if err != nil {
		return fmt.Errorf("residuals %s: %w", name, err)
	}

	minX, maxX := bounds(fitted)
	zero := plotter.XYs{{X: minX, Y: 0}, {X: maxX, Y: 0}}
	line, err := plotter.NewLine(zero)
	if err != nil {
		return fmt.Errorf("residuals %s: %w", name, err)
	}

	p.Add(s, line, plotter.NewGrid())
	return save(p, dir, name)
}

// QQ renders standardized residual quantiles against the standard normal.
// Points near the diagonal support the normal-errors assumption.
func QQ(dir, name string, residuals []float64) error {
	n := len(residuals)
	if n == 0 {
		return fmt.Errorf("qq %s: no residuals", name)
	}

	mean, std := stat.MeanStdDev(residuals, nil)
	sorted := append([]float64(nil), residuals...)
	sort.Float64s(sorted)

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	pts := make(plotter.XYs, n)
	for i, r := range sorted {
		pts[i].X = norm.Quantile((float64(i) + 0.5) / float64(n))
		pts[i].Y = (r - mean) / std
	}

	p := plot.New()
	p.Title.Text = "Normal Q-Q"
	p.X.Label.Text = "theoretical quantile"
	p.Y.Label.Text = "standardized residual"

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("qq %s: %w", name, err)
	}

	lo := math.Min(pts[0].X, pts[0].Y)
	hi := math.Max(pts[n-1].X, pts[n-1].Y)
	diag, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return fmt.Errorf("qq %s: %w", name, err)
	}

	p.Add(s, diag, plotter.NewGrid())
	return save(p, dir, name)
}

// Importance renders permutation feature importances as a bar chart.
func Importance(dir, name string, labels []string, values []float64) error {
	p := plot.New()
	p.Title.Text = "Permutation importance"
	p.Y.Label.Text = "RMSE increase"

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(24))
	if err != nil {
		return fmt.Errorf("importance %s: %w", name, err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	return save(p, dir, name)
}

func save(p *plot.Plot, dir, name string) error {
	path := filepath.Join(dir, name+".png")
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func xyPairs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
