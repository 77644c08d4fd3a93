// Package analysis fits the exploratory and predictive models over the
// per-trip summary file: correlations, ordinary least squares with VIF
// diagnostics, and a regression random forest on a fixed-seed holdout split.
package analysis

import (
	"fmt"

	"github.com/tripgrid/trip-weather-etl/internal/domain"
)

// Summary column names shared by models and plots.
const (
	ColTripCount = "trip_count"
	ColTempC     = "mean_temp_c"
	ColWindMPH   = "mean_wind_mph"
	ColAerosol   = "mean_aerosol_index"
	ColDuration  = "mean_duration_min"
	ColDistance  = "mean_distance_km"
)

// Dataset is a complete-case numeric table extracted from trip summaries:
// a row survives only if every requested column is present, mirroring the
// drop-missing step that precedes model fitting.
type Dataset struct {
	Names []string
	cols  [][]float64
}

// FromSummaries extracts the named columns from the summaries. Unknown column
// names are an error; rows with any absent value among the named columns are
// excluded.
func FromSummaries(summaries []domain.TripSummary, names []string) (Dataset, error) {
	getters := make([]func(domain.TripSummary) *float64, len(names))
	for i, name := range names {
		g, ok := columnGetters[name]
		if !ok {
			return Dataset{}, fmt.Errorf("unknown summary column %q", name)
		}
		getters[i] = g
	}

	cols := make([][]float64, len(names))
	for _, s := range summaries {
		row := make([]float64, len(names))
		complete := true
		for i, g := range getters {
			v := g(s)
			if v == nil {
				complete = false
				break
			}
			row[i] = *v
		}
		if !complete {
			continue
		}
		for i := range cols {
			cols[i] = append(cols[i], row[i])
		}
	}

	return Dataset{Names: names, cols: cols}, nil
}

var columnGetters = map[string]func(domain.TripSummary) *float64{
	ColTripCount: func(s domain.TripSummary) *float64 {
		v := float64(s.TripCount)
		return &v
	},
	ColTempC:    func(s domain.TripSummary) *float64 { return s.MeanTempC },
	ColWindMPH:  func(s domain.TripSummary) *float64 { return s.MeanWindMPH },
	ColAerosol:  func(s domain.TripSummary) *float64 { return s.MeanAerosolIdx },
	ColDuration: func(s domain.TripSummary) *float64 { return s.MeanDurationMin },
	ColDistance: func(s domain.TripSummary) *float64 { return s.MeanDistanceKM },
}

// Len returns the number of complete-case rows.
func (d Dataset) Len() int {
	if len(d.cols) == 0 {
		return 0
	}
	return len(d.cols[0])
}

// Column returns the values for one named column.
func (d Dataset) Column(name string) ([]float64, error) {
	for i, n := range d.Names {
		if n == name {
			return d.cols[i], nil
		}
	}
	return nil, fmt.Errorf("column %q not in dataset", name)
}

// Rows assembles a row-major matrix of the named columns, the shape the
// regression code consumes.
func (d Dataset) Rows(names []string) ([][]float64, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		c, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	rows := make([][]float64, d.Len())
	for r := range rows {
		row := make([]float64, len(names))
		for c := range names {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return rows, nil
}
