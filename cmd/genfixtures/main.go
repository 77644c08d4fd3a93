// Command genfixtures writes synthetic rawlocations.csv / tripData.csv pairs
// for local pipeline runs and test fixtures. Fixes are scattered along each
// trip's straight-line path with timestamps inside the trip window, so join
// and aggregation behavior on generated data matches real exports.
//
// Usage:
//
//	go run ./cmd/genfixtures \
//	  -locations-out data/rawlocations.csv \
//	  -trips-out data/tripData.csv \
//	  -trips 40 -fixes 12 -seed 7
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/tripgrid/trip-weather-etl/internal/csvio"
	"github.com/tripgrid/trip-weather-etl/internal/domain"
)

var baseDate = time.Date(2023, time.June, 5, 6, 0, 0, 0, time.UTC)

// Generated trips scatter around Austin, TX.
const (
	centerLat = 30.2672
	centerLon = -97.7431
)

var activities = []string{"walk", "run", "cycle", "drive"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	locationsOut := flag.String("locations-out", "", "output path for raw locations CSV")
	tripsOut := flag.String("trips-out", "", "output path for trip metadata CSV")
	nTrips := flag.Int("trips", 40, "number of trips")
	nFixes := flag.Int("fixes", 12, "GPS fixes per trip")
	seed := flag.Int64("seed", 7, "random seed")
	flag.Parse()

	if *locationsOut == "" || *tripsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -locations-out, -trips-out")
	}

	rng := rand.New(rand.NewSource(*seed))

	trips := make([]domain.Trip, 0, *nTrips)
	var fixes []domain.LocationFix

	for i := 0; i < *nTrips; i++ {
		trip, tripFixes := genTrip(rng, i, *nFixes)
		trips = append(trips, trip)
		fixes = append(fixes, tripFixes...)
	}

	if err := csvio.WriteTrips(*tripsOut, trips); err != nil {
		return err
	}
	log.Printf("wrote %d trips: %s", len(trips), *tripsOut)

	if err := csvio.WriteLocations(*locationsOut, fixes); err != nil {
		return err
	}
	log.Printf("wrote %d fixes: %s", len(fixes), *locationsOut)
	return nil
}

func genTrip(rng *rand.Rand, i, nFixes int) (domain.Trip, []domain.LocationFix) {
	id := fmt.Sprintf("trip-%03d", i+1)

	start := baseDate.Add(time.Duration(rng.Intn(14*24)) * time.Hour)
	duration := time.Duration(10+rng.Intn(110)) * time.Minute

	startLat := centerLat + rng.NormFloat64()*0.05
	startLon := centerLon + rng.NormFloat64()*0.05
	endLat := startLat + rng.NormFloat64()*0.03
	endLon := startLon + rng.NormFloat64()*0.03

	trip := domain.Trip{
		TripID:    id,
		StartTime: start.Format(domain.SourceTimeLayout),
		EndTime:   start.Add(duration).Format(domain.SourceTimeLayout),
		StartLat:  startLat,
		StartLon:  startLon,
		EndLat:    endLat,
		EndLon:    endLon,
		Activity:  activities[rng.Intn(len(activities))],
	}

	fixes := make([]domain.LocationFix, 0, nFixes)
	for f := 0; f < nFixes; f++ {
		frac := 0.0
		if nFixes > 1 {
			frac = float64(f) / float64(nFixes-1)
		}
		at := start.Add(time.Duration(frac * float64(duration)))
		fixes = append(fixes, domain.LocationFix{
			TripID:   id,
			DateTime: at.Format(domain.SourceTimeLayout),
			Lat:      startLat + (endLat-startLat)*frac + rng.NormFloat64()*0.001,
			Lon:      startLon + (endLon-startLon)*frac + rng.NormFloat64()*0.001,
		})
	}
	return trip, fixes
}
