package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceTimeLayout is the timestamp format used by the GPS export files.
const SourceTimeLayout = "2006-01-02 15:04:05"

// LocationFix is one raw GPS fix from rawlocations.csv, plus the calendar
// fields derived before enrichment. The derived columns are absent in the raw
// file and filled by DeriveCalendar.
type LocationFix struct {
	TripID   string  `csv:"tripid"`
	DateTime string  `csv:"datetime"`
	Lat      float64 `csv:"latitude"`
	Lon      float64 `csv:"longitude"`

	Year  int    `csv:"year"`
	Month int    `csv:"month"`
	Day   int    `csv:"day"`
	Hour  int    `csv:"hour"`
	UTC   string `csv:"utc_time"` // RFC 3339, the form the archive API accepts
}

// Trip is one row of tripData.csv.
type Trip struct {
	TripID    string  `csv:"tripid"`
	StartTime string  `csv:"starttime"`
	EndTime   string  `csv:"endtime"`
	StartLat  float64 `csv:"startlat"`
	StartLon  float64 `csv:"startlon"`
	EndLat    float64 `csv:"endlat"`
	EndLon    float64 `csv:"endlon"`
	Activity  string  `csv:"activity"`
}

// EnrichedFix is a location fix with sampled environmental columns attached.
// Temperature and aerosol use pointers so an absent value round-trips as an
// empty CSV cell; wind defaults to zero when the window is empty, per the
// sampling contract.
type EnrichedFix struct {
	LocationFix
	TempC      *float64 `csv:"temp_c"`
	TempF      *float64 `csv:"temp_f"`
	WindMS     float64  `csv:"wind_ms"`
	WindMPH    float64  `csv:"wind_mph"`
	AerosolIdx *float64 `csv:"aerosol_index"`
}

// JoinedFix is the inner join of an enriched fix with its trip row, with
// derived duration and distance. The trip file's activity column is dropped
// and the fix's datetime column is renamed fix_time.
type JoinedFix struct {
	TripID      string   `csv:"tripid"`
	FixTime     string   `csv:"fix_time"`
	Lat         float64  `csv:"latitude"`
	Lon         float64  `csv:"longitude"`
	TempC       *float64 `csv:"temp_c"`
	TempF       *float64 `csv:"temp_f"`
	WindMS      float64  `csv:"wind_ms"`
	WindMPH     float64  `csv:"wind_mph"`
	AerosolIdx  *float64 `csv:"aerosol_index"`
	StartTime   string   `csv:"starttime"`
	EndTime     string   `csv:"endtime"`
	StartLat    float64  `csv:"startlat"`
	StartLon    float64  `csv:"startlon"`
	EndLat      float64  `csv:"endlat"`
	EndLon      float64  `csv:"endlon"`
	DurationMin float64  `csv:"duration_min"`
	DistanceKM  float64  `csv:"distance_km"`
}

// TripSummary is one row per trip: the contributing fix count and the
// absent-excluding mean of every enriched column.
type TripSummary struct {
	TripID          string   `csv:"tripid" json:"tripid"`
	TripCount       int      `csv:"trip_count" json:"trip_count"`
	MeanTempC       *float64 `csv:"mean_temp_c" json:"mean_temp_c,omitempty"`
	MeanTempF       *float64 `csv:"mean_temp_f" json:"mean_temp_f,omitempty"`
	MeanWindMS      *float64 `csv:"mean_wind_ms" json:"mean_wind_ms,omitempty"`
	MeanWindMPH     *float64 `csv:"mean_wind_mph" json:"mean_wind_mph,omitempty"`
	MeanAerosolIdx  *float64 `csv:"mean_aerosol_index" json:"mean_aerosol_index,omitempty"`
	MeanDurationMin *float64 `csv:"mean_duration_min" json:"mean_duration_min,omitempty"`
	MeanDistanceKM  *float64 `csv:"mean_distance_km" json:"mean_distance_km,omitempty"`
}

// DeriveCalendar parses the fix's source timestamp and fills the year, month,
// day, hour, and RFC 3339 UTC columns.
func DeriveCalendar(fix LocationFix) (LocationFix, error) {
	t, err := ParseSourceTime(fix.DateTime)
	if err != nil {
		return fix, fmt.Errorf("fix %s: %w", fix.TripID, err)
	}
	fix.Year = t.Year()
	fix.Month = int(t.Month())
	fix.Day = t.Day()
	fix.Hour = t.Hour()
	fix.UTC = t.Format(time.RFC3339)
	return fix, nil
}

// ParseSourceTime parses a GPS export timestamp as UTC. RFC 3339 input is
// accepted too so checkpoint files re-read after a resume parse cleanly.
func ParseSourceTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(SourceTimeLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Time returns the fix timestamp, preferring the derived UTC column.
func (f LocationFix) Time() (time.Time, error) {
	if f.UTC != "" {
		return time.Parse(time.RFC3339, f.UTC)
	}
	return ParseSourceTime(f.DateTime)
}
