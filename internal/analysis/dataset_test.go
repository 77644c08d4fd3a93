package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripgrid/trip-weather-etl/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func testSummaries() []domain.TripSummary {
	return []domain.TripSummary{
		{
			TripID: "trip-001", TripCount: 10,
			MeanTempC: ptr(22), MeanWindMPH: ptr(5), MeanAerosolIdx: ptr(0.8),
			MeanDurationMin: ptr(40), MeanDistanceKM: ptr(3),
		},
		{
			TripID: "trip-002", TripCount: 4,
			MeanTempC: ptr(28), MeanWindMPH: ptr(7), MeanAerosolIdx: nil, // incomplete
			MeanDurationMin: ptr(20), MeanDistanceKM: ptr(1.5),
		},
		{
			TripID: "trip-003", TripCount: 6,
			MeanTempC: ptr(25), MeanWindMPH: ptr(6), MeanAerosolIdx: ptr(1.1),
			MeanDurationMin: ptr(60), MeanDistanceKM: ptr(5),
		},
	}
}

func TestFromSummariesDropsIncompleteRows(t *testing.T) {
	data, err := FromSummaries(testSummaries(), []string{ColTempC, ColAerosol, ColDistance})
	require.NoError(t, err)

	assert.Equal(t, 2, data.Len(), "row with absent aerosol excluded")

	temp, err := data.Column(ColTempC)
	require.NoError(t, err)
	assert.Equal(t, []float64{22, 25}, temp)
}

func TestFromSummariesKeepsAllWhenColumnsComplete(t *testing.T) {
	data, err := FromSummaries(testSummaries(), []string{ColTripCount, ColTempC, ColWindMPH})
	require.NoError(t, err)

	assert.Equal(t, 3, data.Len())

	counts, err := data.Column(ColTripCount)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 4, 6}, counts)
}

func TestFromSummariesUnknownColumn(t *testing.T) {
	_, err := FromSummaries(testSummaries(), []string{"mean_cloud_cover"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mean_cloud_cover")
}

func TestDatasetRows(t *testing.T) {
	data, err := FromSummaries(testSummaries(), []string{ColTempC, ColWindMPH, ColDistance})
	require.NoError(t, err)

	rows, err := data.Rows([]string{ColWindMPH, ColTempC})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{5, 22}, {7, 28}, {6, 25}}, rows)

	_, err = data.Rows([]string{ColAerosol})
	assert.Error(t, err, "column not extracted into this dataset")
}

func TestCorrelationMatrix(t *testing.T) {
	summaries := []domain.TripSummary{
		{TripID: "a", MeanTempC: ptr(1), MeanDistanceKM: ptr(2)},
		{TripID: "b", MeanTempC: ptr(2), MeanDistanceKM: ptr(4)},
		{TripID: "c", MeanTempC: ptr(3), MeanDistanceKM: ptr(6)},
		{TripID: "d", MeanTempC: ptr(4), MeanDistanceKM: ptr(8)},
	}
	data, err := FromSummaries(summaries, []string{ColTempC, ColDistance})
	require.NoError(t, err)

	corr := CorrelationMatrix(data)
	assert.InDelta(t, 1.0, corr.At(0, 0), 1e-9)
	assert.InDelta(t, 1.0, corr.At(1, 1), 1e-9)
	assert.InDelta(t, 1.0, corr.At(0, 1), 1e-9, "perfectly linear columns")
}
