// Package csvio reads and writes the pipeline's flat-file checkpoints.
//
// Every stage of the run is persisted as a CSV that is a strict superset or
// transform of the previous one: raw locations → temperature checkpoint →
// wind checkpoint → aerosol checkpoint → joined file → trip summary. Files
// are overwritten whole on each write; absent values serialize as empty
// cells and read back as nil pointers.
package csvio

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/tripgrid/trip-weather-etl/internal/domain"
)

func ReadLocations(path string) ([]domain.LocationFix, error) {
	return readAll[domain.LocationFix](path)
}

func WriteLocations(path string, rows []domain.LocationFix) error {
	return writeAll(path, rows)
}

func ReadTrips(path string) ([]domain.Trip, error) {
	return readAll[domain.Trip](path)
}

func WriteTrips(path string, rows []domain.Trip) error {
	return writeAll(path, rows)
}

func ReadEnriched(path string) ([]domain.EnrichedFix, error) {
	return readAll[domain.EnrichedFix](path)
}

func WriteEnriched(path string, rows []domain.EnrichedFix) error {
	return writeAll(path, rows)
}

func ReadJoined(path string) ([]domain.JoinedFix, error) {
	return readAll[domain.JoinedFix](path)
}

func WriteJoined(path string, rows []domain.JoinedFix) error {
	return writeAll(path, rows)
}

func ReadSummaries(path string) ([]domain.TripSummary, error) {
	return readAll[domain.TripSummary](path)
}

func WriteSummaries(path string, rows []domain.TripSummary) error {
	return writeAll(path, rows)
}

// Exists reports whether a checkpoint file is already present, which lets a
// re-run skip a completed (and paid-for) enrichment pass.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readAll[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []T
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func writeAll[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
