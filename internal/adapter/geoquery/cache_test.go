package geoquery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripgrid/trip-weather-etl/internal/domain"
)

// countingSampler records how many archive round-trips each variable pays for.
type countingSampler struct {
	tempCalls    int
	windCalls    int
	aerosolCalls int
	err          error
}

func (s *countingSampler) Temperature(_ context.Context, _, _ float64, _ time.Time) (domain.TemperatureSample, error) {
	s.tempCalls++
	if s.err != nil {
		return domain.TemperatureSample{}, s.err
	}
	return domain.TemperatureSample{Matched: 1, Celsius: 20, Fahrenheit: 68}, nil
}

func (s *countingSampler) Wind(_ context.Context, _, _ float64, _ time.Time) (domain.WindSample, error) {
	s.windCalls++
	return domain.WindSample{Matched: 1, SpeedMS: 2, SpeedMPH: 2 * domain.MSToMPH}, nil
}

func (s *countingSampler) Aerosol(_ context.Context, _, _ float64, _ time.Time) (domain.AerosolSample, error) {
	s.aerosolCalls++
	return domain.AerosolSample{Matched: 1, Index: 0.8}, nil
}

func TestCachedSamplerReusesNearbyFixes(t *testing.T) {
	inner := &countingSampler{}
	c := NewCachedSampler(inner, 16, nil)
	ctx := context.Background()

	at := time.Date(2023, 6, 5, 14, 10, 0, 0, time.UTC)

	_, err := c.Temperature(ctx, 30.26721, -97.74312, at)
	require.NoError(t, err)
	// Same 4-decimal coordinate cell, same hour bucket: served from cache.
	_, err = c.Temperature(ctx, 30.26723, -97.74308, at.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, inner.tempCalls)

	// A different hour is a different key.
	_, err = c.Temperature(ctx, 30.26721, -97.74312, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.tempCalls)

	// So is a coordinate outside the rounding cell.
	_, err = c.Temperature(ctx, 30.2750, -97.74312, at)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.tempCalls)
}

func TestCachedSamplerVariablesAreIndependent(t *testing.T) {
	inner := &countingSampler{}
	c := NewCachedSampler(inner, 16, nil)
	ctx := context.Background()
	at := time.Date(2023, 6, 5, 14, 0, 0, 0, time.UTC)

	_, err := c.Temperature(ctx, 30.0, -97.0, at)
	require.NoError(t, err)
	_, err = c.Wind(ctx, 30.0, -97.0, at)
	require.NoError(t, err)
	_, err = c.Aerosol(ctx, 30.0, -97.0, at)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.tempCalls)
	assert.Equal(t, 1, inner.windCalls)
	assert.Equal(t, 1, inner.aerosolCalls)
}

func TestCachedSamplerDoesNotCacheErrors(t *testing.T) {
	inner := &countingSampler{err: errors.New("archive down")}
	c := NewCachedSampler(inner, 16, nil)
	ctx := context.Background()
	at := time.Date(2023, 6, 5, 14, 0, 0, 0, time.UTC)

	_, err := c.Temperature(ctx, 30.0, -97.0, at)
	require.Error(t, err)

	inner.err = nil
	_, err = c.Temperature(ctx, 30.0, -97.0, at)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.tempCalls, "failed lookups retry against the archive")
}

func TestLRUCacheEviction(t *testing.T) {
	c := newLRUCache[int](2)
	c.put("a", 1)
	c.put("b", 2)

	// Touch a so b becomes the eviction candidate.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", 3)

	_, ok = c.get("b")
	assert.False(t, ok, "least recently used entry evicted")
	va, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 1, va)
	vc, ok := c.get("c")
	require.True(t, ok)
	assert.Equal(t, 3, vc)
}

func TestLRUCacheUpdateExisting(t *testing.T) {
	c := newLRUCache[int](2)
	c.put("a", 1)
	c.put("a", 10)

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Len(t, c.entries, 1)
}

func TestSampleKey(t *testing.T) {
	at := time.Date(2023, 6, 5, 14, 59, 59, 0, time.UTC)
	same := time.Date(2023, 6, 5, 14, 0, 1, 0, time.UTC)
	next := time.Date(2023, 6, 5, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, sampleKey(30.12344, -97.5, at), sampleKey(30.12341, -97.5, same))
	assert.NotEqual(t, sampleKey(30.12344, -97.5, at), sampleKey(30.12344, -97.5, next))
}
