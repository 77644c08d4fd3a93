package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tripgrid/trip-weather-etl/internal/csvio"
	"github.com/tripgrid/trip-weather-etl/internal/domain"
)

// pass is one enrichment variable: its name, checkpoint file, and per-row
// sampling function.
type pass struct {
	name       string
	checkpoint string
	sample     func(ctx context.Context, row *domain.EnrichedFix)
}

// runPass samples one variable for every row and writes the checkpoint.
// When the checkpoint already exists and force-refresh is off, the pass is
// skipped and the checkpoint is read back instead, so an interrupted run
// resumes without repeating paid archive queries.
func (p *Pipeline) runPass(ctx context.Context, ps pass, rows []domain.EnrichedFix) ([]domain.EnrichedFix, error) {
	if !p.forceRefresh && csvio.Exists(ps.checkpoint) {
		p.logger.Info("checkpoint exists, skipping pass", "variable", ps.name, "path", ps.checkpoint)
		resumed, err := csvio.ReadEnriched(ps.checkpoint)
		if err != nil {
			return nil, checkpointError(ps.name, ps.checkpoint, err)
		}
		return resumed, nil
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range rows {
		i := i
		g.Go(func() error {
			// Cancellation aborts the pass; row-level sampling failures do not.
			if err := gctx.Err(); err != nil {
				return err
			}
			ps.sample(gctx, &rows[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := csvio.WriteEnriched(ps.checkpoint, rows); err != nil {
		return nil, checkpointError(ps.name, ps.checkpoint, err)
	}
	observeDuration(p.metrics, ps.name, start)
	p.logger.Info("pass complete", "variable", ps.name, "rows", len(rows), "path", ps.checkpoint, "elapsed", time.Since(start))
	return rows, nil
}

func (p *Pipeline) sampleTemperature(ctx context.Context, row *domain.EnrichedFix) {
	at, err := row.Time()
	if err != nil {
		p.countSample("temperature", "error")
		return
	}

	s, err := p.sampler.Temperature(ctx, row.Lat, row.Lon, at)
	if err != nil {
		p.logger.Warn("temperature sample failed", "tripid", row.TripID, "lat", row.Lat, "lon", row.Lon, "error", err)
		p.countSample("temperature", "error")
		return
	}
	if s.Matched == 0 {
		p.countSample("temperature", "empty")
		return
	}

	row.TempC = &s.Celsius
	row.TempF = &s.Fahrenheit
	p.countSample("temperature", "ok")
}

func (p *Pipeline) sampleWind(ctx context.Context, row *domain.EnrichedFix) {
	at, err := row.Time()
	if err != nil {
		p.countSample("wind", "error")
		return
	}

	s, err := p.sampler.Wind(ctx, row.Lat, row.Lon, at)
	if err != nil {
		p.logger.Warn("wind sample failed", "tripid", row.TripID, "lat", row.Lat, "lon", row.Lon, "error", err)
		p.countSample("wind", "error")
		return
	}
	// Zero stays in place on an empty window: wind is never absent.
	row.WindMS = s.SpeedMS
	row.WindMPH = s.SpeedMPH
	if s.Matched == 0 {
		p.countSample("wind", "empty")
		return
	}
	p.countSample("wind", "ok")
}

func (p *Pipeline) sampleAerosol(ctx context.Context, row *domain.EnrichedFix) {
	at, err := row.Time()
	if err != nil {
		p.countSample("aerosol", "error")
		return
	}

	s, err := p.sampler.Aerosol(ctx, row.Lat, row.Lon, at)
	if err != nil {
		p.logger.Warn("aerosol sample failed", "tripid", row.TripID, "lat", row.Lat, "lon", row.Lon, "error", err)
		p.countSample("aerosol", "error")
		return
	}
	if s.Matched == 0 {
		p.countSample("aerosol", "empty")
		return
	}

	row.AerosolIdx = &s.Index
	p.countSample("aerosol", "ok")
}

func (p *Pipeline) countSample(variable, outcome string) {
	p.metrics.SampleRequests.WithLabelValues(variable, outcome).Inc()
}
