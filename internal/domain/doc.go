// Package domain models GPS trip data and its environmental enrichment.
//
// # Data Sources
//
// Trip data arrives as two flat CSV files exported from a GPS tracking app:
//
//	rawlocations.csv — one row per GPS fix: trip identifier, local timestamp
//	  ("2006-01-02 15:04:05", UTC), latitude, longitude. A trip usually
//	  contributes many fixes; fixes are not unique per trip.
//	tripData.csv — one row per trip: trip identifier, start/end timestamps,
//	  start/end coordinates, and an activity classification that is dropped
//	  during the join.
//
// Environmental values come from a gridded earth-observation archive queried
// by point, time window, and spatial reduction:
//
//	Temperature: ERA5-Land hourly reanalysis, 2 m air temperature in Kelvin.
//	  Window ±1 hour around the fix (hourly revisit), mean over a 1 km scale.
//	Wind: ERA5-Land hourly u/v 10 m wind components in m/s, same window and
//	  scale as temperature. Magnitude is the Euclidean norm of (u, v).
//	Aerosol: Sentinel-5P absorbing aerosol index. Window ±24 hours (roughly
//	  daily revisit), mean over a 7 km scale.
//
// # Missing-Value Conventions
//
// A fix whose query window matched zero images, or whose query failed, carries
// no temperature and no aerosol index (empty CSV cell, nil pointer here).
// Wind is the exception: an empty window yields 0.0 m/s and 0.0 mph, never
// absent. Aggregation means exclude absent values; a trip whose fixes are all
// absent for a variable has an undefined mean, not zero.
//
// # Units
//
// Temperature is carried in both Celsius (Kelvin − 273.15) and Fahrenheit
// (C × 9/5 + 32). Wind speed is carried in m/s and mph (× 2.23694). Distances
// are great-circle kilometres from the haversine formula; durations are
// minutes.
package domain
