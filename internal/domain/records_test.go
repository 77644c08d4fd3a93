package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{
			name:     "source layout",
			input:    "2023-06-05 14:30:00",
			expected: time.Date(2023, 6, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name:     "rfc3339 from checkpoint",
			input:    "2023-06-05T14:30:00Z",
			expected: time.Date(2023, 6, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name:     "surrounding whitespace",
			input:    "  2023-06-05 14:30:00  ",
			expected: time.Date(2023, 6, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "yesterday-ish",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSourceTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.expected), "got %v, want %v", got, tt.expected)
		})
	}
}

func TestDeriveCalendar(t *testing.T) {
	fix := LocationFix{
		TripID:   "trip-001",
		DateTime: "2023-06-05 14:30:00",
		Lat:      30.2672,
		Lon:      -97.7431,
	}

	got, err := DeriveCalendar(fix)
	require.NoError(t, err)

	assert.Equal(t, 2023, got.Year)
	assert.Equal(t, 6, got.Month)
	assert.Equal(t, 5, got.Day)
	assert.Equal(t, 14, got.Hour)
	assert.Equal(t, "2023-06-05T14:30:00Z", got.UTC)
	// Source columns pass through untouched.
	assert.Equal(t, fix.TripID, got.TripID)
	assert.Equal(t, fix.DateTime, got.DateTime)
}

func TestDeriveCalendarBadTimestamp(t *testing.T) {
	_, err := DeriveCalendar(LocationFix{TripID: "trip-009", DateTime: "not a time"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trip-009")
}

func TestLocationFixTime(t *testing.T) {
	t.Run("prefers derived utc column", func(t *testing.T) {
		fix := LocationFix{DateTime: "2023-06-05 14:30:00", UTC: "2023-06-05T15:00:00Z"}
		got, err := fix.Time()
		require.NoError(t, err)
		assert.Equal(t, 15, got.Hour())
	})

	t.Run("falls back to source datetime", func(t *testing.T) {
		fix := LocationFix{DateTime: "2023-06-05 14:30:00"}
		got, err := fix.Time()
		require.NoError(t, err)
		assert.Equal(t, 14, got.Hour())
	})
}
