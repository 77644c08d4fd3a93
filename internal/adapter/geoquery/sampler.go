package geoquery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tripgrid/trip-weather-etl/internal/domain"
)

// Dataset identifiers and bands. These follow the archive's catalogue naming.
const (
	temperatureCollection = "ECMWF/ERA5_LAND/HOURLY"
	temperatureBand       = "temperature_2m"
	windBandU             = "u_component_of_wind_10m"
	windBandV             = "v_component_of_wind_10m"

	aerosolCollection = "COPERNICUS/S5P/OFFL/L3_AER_AI"
	aerosolBand       = "absorbing_aerosol_index"
)

// Per-variable query geometry. The window asymmetry tracks each dataset's
// native revisit cadence: ERA5-Land is hourly, Sentinel-5P roughly daily.
const (
	hourlyWindow  = time.Hour
	aerosolWindow = 24 * time.Hour

	fineScaleM   = 1000.0
	coarseScaleM = 7000.0
)

// Sampler answers point-in-time environmental queries through an archive
// Client. It implements domain.Sampler. An empty query window is a valid
// "no data" outcome; only transport and protocol failures surface as errors.
type Sampler struct {
	client *Client
	logger *slog.Logger
}

// NewSampler wraps an archive client.
func NewSampler(client *Client, logger *slog.Logger) *Sampler {
	return &Sampler{client: client, logger: logger}
}

func (s *Sampler) Temperature(ctx context.Context, lat, lon float64, at time.Time) (domain.TemperatureSample, error) {
	bands, matched, err := s.reduceAtPoint(ctx, temperatureCollection, []string{temperatureBand}, lat, lon, at, hourlyWindow, fineScaleM)
	if err != nil {
		return domain.TemperatureSample{}, err
	}
	if matched == 0 {
		return domain.TemperatureSample{}, nil
	}

	celsius := domain.KelvinToCelsius(bands[temperatureBand])
	return domain.TemperatureSample{
		Matched:    matched,
		Celsius:    celsius,
		Fahrenheit: domain.CelsiusToFahrenheit(celsius),
	}, nil
}

func (s *Sampler) Wind(ctx context.Context, lat, lon float64, at time.Time) (domain.WindSample, error) {
	bands, matched, err := s.reduceAtPoint(ctx, temperatureCollection, []string{windBandU, windBandV}, lat, lon, at, hourlyWindow, fineScaleM)
	if err != nil {
		return domain.WindSample{}, err
	}
	if matched == 0 {
		// Empty window defaults to a zero wind speed, not an absent value.
		return domain.WindSample{}, nil
	}

	speed := domain.WindMagnitude(bands[windBandU], bands[windBandV])
	return domain.WindSample{
		Matched:  matched,
		SpeedMS:  speed,
		SpeedMPH: speed * domain.MSToMPH,
	}, nil
}

func (s *Sampler) Aerosol(ctx context.Context, lat, lon float64, at time.Time) (domain.AerosolSample, error) {
	bands, matched, err := s.reduceAtPoint(ctx, aerosolCollection, []string{aerosolBand}, lat, lon, at, aerosolWindow, coarseScaleM)
	if err != nil {
		return domain.AerosolSample{}, err
	}
	if matched == 0 {
		return domain.AerosolSample{}, nil
	}

	return domain.AerosolSample{Matched: matched, Index: bands[aerosolBand]}, nil
}

// reduceAtPoint runs the filter → reduce → fetch sequence for one variable at
// one fix. A zero match count short-circuits before any reduction is paid for.
func (s *Sampler) reduceAtPoint(ctx context.Context, collection string, bands []string, lat, lon float64, at time.Time, window time.Duration, scaleM float64) (map[string]float64, int, error) {
	start := at.Add(-window)
	end := at.Add(window)

	filter, err := s.client.FilterImages(ctx, collection, lat, lon, start, end)
	if err != nil {
		return nil, 0, err
	}

	s.logger.Debug("archive filter",
		"collection", collection,
		"lat", lat, "lon", lon,
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
		"matched", filter.Count,
	)

	if filter.Count == 0 {
		return nil, 0, nil
	}

	queryID, err := s.client.ReduceMean(ctx, filter.FilterID, bands, scaleM)
	if err != nil {
		return nil, 0, err
	}

	values, err := s.client.FetchResult(ctx, queryID)
	if err != nil {
		return nil, 0, err
	}
	for _, b := range bands {
		if _, ok := values[b]; !ok {
			return nil, 0, fmt.Errorf("archive result missing band %s", b)
		}
	}
	return values, filter.Count, nil
}
