package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKelvinToCelsius(t *testing.T) {
	assert.InDelta(t, 0.0, KelvinToCelsius(273.15), 1e-9)
	assert.InDelta(t, 26.85, KelvinToCelsius(300.0), 1e-9)
	assert.InDelta(t, -273.15, KelvinToCelsius(0), 1e-9)
}

func TestCelsiusToFahrenheit(t *testing.T) {
	tests := []struct {
		name     string
		celsius  float64
		expected float64
	}{
		{"freezing", 0, 32},
		{"boiling", 100, 212},
		{"body temperature", 37, 98.6},
		{"negative forty is its own image", -40, -40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CelsiusToFahrenheit(tt.celsius), 1e-9)
		})
	}
}

func TestMSToMPH(t *testing.T) {
	// The fixed conversion factor, good to six decimals.
	assert.InDelta(t, 2.23694, MSToMPH, 1e-6)
	assert.InDelta(t, 22.3694, 10*MSToMPH, 1e-4)
}

func TestWindMagnitude(t *testing.T) {
	tests := []struct {
		name     string
		u, v     float64
		expected float64
	}{
		{"calm", 0, 0, 0},
		{"pure east", 3, 0, 3},
		{"pure north", 0, 4, 4},
		{"3-4-5 triangle", 3, 4, 5},
		{"negative components", -3, -4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WindMagnitude(tt.u, tt.v), 1e-9)
		})
	}
}
