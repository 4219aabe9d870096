package reports

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/cluster"
	"github.com/JaimeStill/lacuna/internal/faqs"
	"github.com/JaimeStill/lacuna/internal/gaps"
	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/lifecycle"
	"github.com/JaimeStill/lacuna/pkg/pagination"
)

// Detector runs gap detection over ingested signals.
type Detector interface {
	Detect(ctx context.Context, sigs []signals.Signal) (*gaps.DetectResult, error)
}

// Generator drafts FAQs from ingested signals.
type Generator interface {
	GenerateFrom(ctx context.Context, sigs []signals.Signal) (*faqs.GenerateResult, error)
}

// Options wires the dependencies of the report System.
type Options struct {
	Store      Store
	Aggregator *Aggregator
	Archive    Archive
	Detector   Detector
	Generator  Generator
	// Interval between scheduled snapshots. Zero disables the scheduler.
	Interval   time.Duration
	Clock      func() time.Time
	Pagination pagination.Config
}

type service struct {
	store      Store
	aggregator *Aggregator
	archive    Archive
	detector   Detector
	generator  Generator
	interval   time.Duration
	clock      func() time.Time
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the report System.
func New(opts Options, logger *slog.Logger) System {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &service{
		store:      opts.Store,
		aggregator: opts.Aggregator,
		archive:    opts.Archive,
		detector:   opts.Detector,
		generator:  opts.Generator,
		interval:   opts.Interval,
		clock:      clock,
		logger:     logger.With("system", "reports"),
		pagination: opts.Pagination,
	}
}

func (s *service) Handler(maxBodySize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxBodySize)
}

func (s *service) Start(lc *lifecycle.Coordinator) {
	if s.interval <= 0 {
		s.logger.Info("report scheduler disabled")
		return
	}
	lc.Go(func(ctx context.Context) {
		Schedule(ctx, s.interval, s.aggregator, s.logger)
	})
}

func (s *service) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Report], error) {
	page.Normalize(s.pagination)
	return s.store.List(ctx, page, filters)
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.store.Find(ctx, id)
}

func (s *service) Archived(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	r, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.archive == nil || r.ArchiveKey == "" {
		return nil, ErrNotArchived
	}
	return s.archive.Download(ctx, r.ArchiveKey)
}

func (s *service) Snapshot(ctx context.Context) (*Report, error) {
	return s.aggregator.Snapshot(ctx)
}

func (s *service) RunAnalysis(ctx context.Context, batch signals.Batch) (*RunResult, error) {
	start := s.clock()

	sigs, err := signals.Ingest(batch, start)
	if err != nil {
		return nil, err
	}

	detection, err := s.detector.Detect(ctx, sigs)
	if err != nil {
		return nil, err
	}

	generation, err := s.generator.GenerateFrom(ctx, sigs)
	if err != nil {
		return nil, err
	}

	failures := make([]cluster.Failure, 0, len(detection.Failures)+len(generation.Failures))
	failures = append(failures, detection.Failures...)
	failures = append(failures, generation.Failures...)

	run := &Run{
		SignalsAnalyzed: len(sigs),
		GapsUpserted:    len(detection.Gaps),
		FAQsGenerated:   len(generation.FAQs),
		FAQsSkipped:     len(generation.Skipped),
		Failures:        failures,
		DurationMS:      s.clock().Sub(start).Milliseconds(),
	}

	report, err := s.aggregator.Record(ctx, run)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Detection:  detection,
		Generation: generation,
		Report:     report,
	}, nil
}
