package domain

import (
	"context"
	"time"
)

// TemperatureSample is a 2 m air temperature reading at a point in time.
// Matched is the number of archive images inside the query window; zero means
// no data was available, which is not an error.
type TemperatureSample struct {
	Matched    int
	Celsius    float64
	Fahrenheit float64
}

// WindSample is a 10 m wind speed reading derived from u/v components.
type WindSample struct {
	Matched  int
	SpeedMS  float64
	SpeedMPH float64
}

// AerosolSample is an absorbing aerosol index reading.
type AerosolSample struct {
	Matched int
	Index   float64
}

// Sampler answers point-in-time environmental queries against a gridded
// archive. Implementations own the per-variable time windows and spatial
// scales; callers supply only the fix coordinate and timestamp.
type Sampler interface {
	Temperature(ctx context.Context, lat, lon float64, at time.Time) (TemperatureSample, error)
	Wind(ctx context.Context, lat, lon float64, at time.Time) (WindSample, error)
	Aerosol(ctx context.Context, lat, lon float64, at time.Time) (AerosolSample, error)
}
