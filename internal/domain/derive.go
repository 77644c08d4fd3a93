package domain

import (
	"sort"
)

// JoinResult carries the joined rows plus the count of location rows dropped
// because their trip identifier had no matching trip (inner-join semantics).
type JoinResult struct {
	Rows    []JoinedFix
	Dropped int
}

// Join inner-joins enriched fixes to trip metadata on trip identifier and
// derives duration (minutes) and great-circle distance (km) per row. Unmatched
// fixes drop silently from the output; the count is reported so callers can
// log it. The trip activity column does not survive the join, and the fix
// datetime column is carried as fix_time.
//
// Trip timestamps that fail to parse yield a zero duration rather than an
// error; the source files carry no referential-integrity guarantees and a bad
// trip row should not abort the run. Duration sign and coordinate bounds are
// deliberately unchecked.
func Join(fixes []EnrichedFix, trips []Trip) JoinResult {
	byID := make(map[string]Trip, len(trips))
	for _, tr := range trips {
		byID[tr.TripID] = tr
	}

	res := JoinResult{Rows: make([]JoinedFix, 0, len(fixes))}
	for _, fix := range fixes {
		trip, ok := byID[fix.TripID]
		if !ok {
			res.Dropped++
			continue
		}
		res.Rows = append(res.Rows, joinRow(fix, trip))
	}
	return res
}

func joinRow(fix EnrichedFix, trip Trip) JoinedFix {
	row := JoinedFix{
		TripID:     fix.TripID,
		FixTime:    fix.DateTime,
		Lat:        fix.Lat,
		Lon:        fix.Lon,
		TempC:      fix.TempC,
		TempF:      fix.TempF,
		WindMS:     fix.WindMS,
		WindMPH:    fix.WindMPH,
		AerosolIdx: fix.AerosolIdx,
		StartTime:  trip.StartTime,
		EndTime:    trip.EndTime,
		StartLat:   trip.StartLat,
		StartLon:   trip.StartLon,
		EndLat:     trip.EndLat,
		EndLon:     trip.EndLon,
	}

	start, errS := ParseSourceTime(trip.StartTime)
	end, errE := ParseSourceTime(trip.EndTime)
	if errS == nil && errE == nil {
		row.DurationMin = end.Sub(start).Minutes()
	}
	row.DistanceKM = HaversineKM(trip.StartLat, trip.StartLon, trip.EndLat, trip.EndLon)

	return row
}

// Aggregate collapses joined rows into one summary per trip identifier,
// ordered by identifier for deterministic output. TripCount is the number of
// contributing rows; every mean excludes absent values and stays undefined
// (nil) when all contributing values are absent.
func Aggregate(rows []JoinedFix) []TripSummary {
	groups := make(map[string][]JoinedFix)
	for _, r := range rows {
		groups[r.TripID] = append(groups[r.TripID], r)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summaries := make([]TripSummary, 0, len(ids))
	for _, id := range ids {
		summaries = append(summaries, summarize(id, groups[id]))
	}
	return summaries
}

func summarize(id string, rows []JoinedFix) TripSummary {
	var tempC, tempF, windMS, windMPH, aerosol, duration, distance meanAcc
	for _, r := range rows {
		tempC.addPtr(r.TempC)
		tempF.addPtr(r.TempF)
		windMS.add(r.WindMS)
		windMPH.add(r.WindMPH)
		aerosol.addPtr(r.AerosolIdx)
		duration.add(r.DurationMin)
		distance.add(r.DistanceKM)
	}
	return TripSummary{
		TripID:          id,
		TripCount:       len(rows),
		MeanTempC:       tempC.mean(),
		MeanTempF:       tempF.mean(),
		MeanWindMS:      windMS.mean(),
		MeanWindMPH:     windMPH.mean(),
		MeanAerosolIdx:  aerosol.mean(),
		MeanDurationMin: duration.mean(),
		MeanDistanceKM:  distance.mean(),
	}
}

// meanAcc accumulates an absent-excluding arithmetic mean.
type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v float64) {
	m.sum += v
	m.n++
}

func (m *meanAcc) addPtr(v *float64) {
	if v == nil {
		return
	}
	m.add(*v)
}

func (m *meanAcc) mean() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}
