package geoquery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripgrid/trip-weather-etl/internal/domain"
)

// fakeArchive serves the full filter → reduce → fetch protocol with canned
// per-collection matches and band values.
type fakeArchive struct {
	counts  map[string]int
	bands   map[string]float64
	filters []url.Values
}

func (a *fakeArchive) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/images:filter":
			a.filters = append(a.filters, r.URL.Query())
			collection := r.URL.Query().Get("collection")
			json.NewEncoder(w).Encode(map[string]any{
				"filter_id": "flt-" + collection,
				"count":     a.counts[collection],
			})
		case r.URL.Path == "/v1/reductions" && r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]string{"query_id": "qry-1"})
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{"query_id": "qry-1", "bands": a.bands})
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestSampler(t *testing.T, a *fakeArchive) *Sampler {
	t.Helper()
	srv := httptest.NewServer(a.handler())
	t.Cleanup(srv.Close)
	return NewSampler(NewClient(srv.URL, "tok", 5*time.Second, testLogger()), testLogger())
}

var fixTime = time.Date(2023, 6, 5, 14, 30, 0, 0, time.UTC)

func TestSamplerTemperature(t *testing.T) {
	archive := &fakeArchive{
		counts: map[string]int{temperatureCollection: 2},
		bands:  map[string]float64{temperatureBand: 300.15},
	}
	s := newTestSampler(t, archive)

	got, err := s.Temperature(context.Background(), 30.2672, -97.7431, fixTime)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Matched)
	assert.InDelta(t, 27.0, got.Celsius, 1e-9)
	assert.InDelta(t, 80.6, got.Fahrenheit, 1e-9)

	// ±1h window around the fix.
	require.Len(t, archive.filters, 1)
	assert.Equal(t, "2023-06-05T13:30:00Z", archive.filters[0].Get("start"))
	assert.Equal(t, "2023-06-05T15:30:00Z", archive.filters[0].Get("end"))
}

func TestSamplerTemperatureEmptyWindow(t *testing.T) {
	s := newTestSampler(t, &fakeArchive{counts: map[string]int{}})

	got, err := s.Temperature(context.Background(), 30.2672, -97.7431, fixTime)
	require.NoError(t, err, "no data is not an error")
	assert.Zero(t, got.Matched)
}

func TestSamplerWind(t *testing.T) {
	archive := &fakeArchive{
		counts: map[string]int{temperatureCollection: 1},
		bands:  map[string]float64{windBandU: 3, windBandV: 4},
	}
	s := newTestSampler(t, archive)

	got, err := s.Wind(context.Background(), 30.2672, -97.7431, fixTime)
	require.NoError(t, err)

	assert.Equal(t, 1, got.Matched)
	assert.InDelta(t, 5.0, got.SpeedMS, 1e-9)
	assert.InDelta(t, 5.0*domain.MSToMPH, got.SpeedMPH, 1e-9)
}

func TestSamplerWindEmptyWindowDefaultsToZero(t *testing.T) {
	s := newTestSampler(t, &fakeArchive{counts: map[string]int{}})

	got, err := s.Wind(context.Background(), 30.2672, -97.7431, fixTime)
	require.NoError(t, err)
	assert.Zero(t, got.Matched)
	assert.Zero(t, got.SpeedMS)
	assert.Zero(t, got.SpeedMPH)
}

func TestSamplerAerosol(t *testing.T) {
	archive := &fakeArchive{
		counts: map[string]int{aerosolCollection: 4},
		bands:  map[string]float64{aerosolBand: 1.25},
	}
	s := newTestSampler(t, archive)

	got, err := s.Aerosol(context.Background(), 30.2672, -97.7431, fixTime)
	require.NoError(t, err)

	assert.Equal(t, 4, got.Matched)
	assert.InDelta(t, 1.25, got.Index, 1e-9)

	// ±24h window for the daily-revisit dataset.
	require.Len(t, archive.filters, 1)
	assert.Equal(t, "2023-06-04T14:30:00Z", archive.filters[0].Get("start"))
	assert.Equal(t, "2023-06-06T14:30:00Z", archive.filters[0].Get("end"))
}

func TestSamplerMissingBand(t *testing.T) {
	archive := &fakeArchive{
		counts: map[string]int{temperatureCollection: 1},
		bands:  map[string]float64{}, // reduction came back without the band
	}
	s := newTestSampler(t, archive)

	_, err := s.Temperature(context.Background(), 30.2672, -97.7431, fixTime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing band")
}
