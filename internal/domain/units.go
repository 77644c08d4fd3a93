package domain

import "math"

// MSToMPH converts metres per second to miles per hour.
const MSToMPH = 2.23694

func KelvinToCelsius(k float64) float64 {
	return k - 273.15
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// WindMagnitude combines u/v wind components into a scalar speed.
func WindMagnitude(u, v float64) float64 {
	return math.Hypot(u, v)
}
