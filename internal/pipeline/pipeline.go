// Package pipeline orchestrates the enrichment run: three sampling passes
// over the raw location fixes with a checkpoint file after each, then the
// trip join, the per-trip aggregation, and the optional summary publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tripgrid/trip-weather-etl/internal/csvio"
	"github.com/tripgrid/trip-weather-etl/internal/domain"
	"github.com/tripgrid/trip-weather-etl/internal/observability"
)

// Paths names the flat files the run reads and writes.
type Paths struct {
	RawLocations          string
	TripData              string
	TemperatureCheckpoint string
	WindCheckpoint        string
	AerosolCheckpoint     string
	Joined                string
	Summary               string
}

// SummaryPublisher pushes finished trip summaries to an optional sink.
type SummaryPublisher interface {
	PublishSummaries(ctx context.Context, summaries []domain.TripSummary) error
}

// Pipeline runs the file-to-file enrichment sequence.
type Pipeline struct {
	sampler      domain.Sampler
	paths        Paths
	publisher    SummaryPublisher // nil disables publishing
	logger       *slog.Logger
	metrics      *observability.Metrics
	concurrency  int
	forceRefresh bool
	ready        atomic.Bool
}

// New creates a Pipeline. publisher may be nil.
func New(sampler domain.Sampler, paths Paths, publisher SummaryPublisher, logger *slog.Logger, metrics *observability.Metrics, concurrency int, forceRefresh bool) *Pipeline {
	return &Pipeline{
		sampler:      sampler,
		paths:        paths,
		publisher:    publisher,
		logger:       logger,
		metrics:      metrics,
		concurrency:  concurrency,
		forceRefresh: forceRefresh,
	}
}

// CheckReadiness returns nil once at least one enrichment pass has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no enrichment pass has completed yet")
	}
	return nil
}

// Run executes the full sequence. Row-level sampling failures degrade to
// absent values and never abort; only I/O errors and cancellation do.
func (p *Pipeline) Run(ctx context.Context) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	rows, err := p.loadFixes()
	if err != nil {
		return err
	}
	p.logger.Info("enrichment started", "rows", len(rows), "concurrency", p.concurrency)

	passes := []pass{
		{name: "temperature", checkpoint: p.paths.TemperatureCheckpoint, sample: p.sampleTemperature},
		{name: "wind", checkpoint: p.paths.WindCheckpoint, sample: p.sampleWind},
		{name: "aerosol", checkpoint: p.paths.AerosolCheckpoint, sample: p.sampleAerosol},
	}
	for _, ps := range passes {
		rows, err = p.runPass(ctx, ps, rows)
		if err != nil {
			return err
		}
		p.ready.Store(true)
	}

	trips, err := csvio.ReadTrips(p.paths.TripData)
	if err != nil {
		return err
	}

	joined := domain.Join(rows, trips)
	p.metrics.RowsJoined.Add(float64(len(joined.Rows)))
	p.metrics.RowsDropped.Add(float64(joined.Dropped))
	if joined.Dropped > 0 {
		p.logger.Warn("rows dropped by inner join", "dropped", joined.Dropped, "kept", len(joined.Rows))
	}
	if err := csvio.WriteJoined(p.paths.Joined, joined.Rows); err != nil {
		return err
	}

	summaries := domain.Aggregate(joined.Rows)
	if err := csvio.WriteSummaries(p.paths.Summary, summaries); err != nil {
		return err
	}
	p.metrics.SummariesEmitted.Add(float64(len(summaries)))
	p.logger.Info("aggregation written", "trips", len(summaries), "path", p.paths.Summary)

	p.publish(ctx, summaries)
	return nil
}

// loadFixes reads the raw location file and derives calendar columns. Fixes
// with unparseable timestamps are skipped with a warning, mirroring the
// row-level degradation of the sampling passes.
func (p *Pipeline) loadFixes() ([]domain.EnrichedFix, error) {
	fixes, err := csvio.ReadLocations(p.paths.RawLocations)
	if err != nil {
		return nil, err
	}
	p.metrics.RowsRead.Add(float64(len(fixes)))

	rows := make([]domain.EnrichedFix, 0, len(fixes))
	for _, fix := range fixes {
		derived, err := domain.DeriveCalendar(fix)
		if err != nil {
			p.logger.Warn("skipping fix with bad timestamp", "tripid", fix.TripID, "datetime", fix.DateTime, "error", err)
			continue
		}
		rows = append(rows, domain.EnrichedFix{LocationFix: derived})
	}
	return rows, nil
}

// publish sends summaries to the optional sink. Publish failures are logged,
// not fatal: the flat files are the system of record.
func (p *Pipeline) publish(ctx context.Context, summaries []domain.TripSummary) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishSummaries(ctx, summaries); err != nil {
		p.logger.Error("summary publish failed", "error", err, "summaries", len(summaries))
		return
	}
	p.logger.Info("summaries published", "count", len(summaries))
}

func checkpointError(name, path string, err error) error {
	return fmt.Errorf("%s checkpoint %s: %w", name, path, err)
}

func observeDuration(m *observability.Metrics, variable string, start time.Time) {
	m.PassDuration.WithLabelValues(variable).Observe(time.Since(start).Seconds())
}
