package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/lacuna/internal/events"
	"github.com/JaimeStill/lacuna/internal/faqs"
	"github.com/JaimeStill/lacuna/internal/gaps"
)

// GapStats reads gap aggregates.
type GapStats interface {
	Stats(ctx context.Context) (*gaps.Stats, error)
}

// FAQStats reads FAQ aggregates.
type FAQStats interface {
	Stats(ctx context.Context) (*faqs.Stats, error)
}

// Archive stores archived report copies. storage.System satisfies it.
type Archive interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// Aggregator builds and persists reports. It only reads gap and FAQ state.
type Aggregator struct {
	store     Store
	gaps      GapStats
	faqs      FAQStats
	archive   Archive
	publisher events.Publisher
	clock     func() time.Time
	logger    *slog.Logger
}

// NewAggregator creates an Aggregator. archive may be nil to disable archiving.
func NewAggregator(
	store Store,
	gapStats GapStats,
	faqStats FAQStats,
	archive Archive,
	publisher events.Publisher,
	clock func() time.Time,
	logger *slog.Logger,
) *Aggregator {
	if clock == nil {
		clock = time.Now
	}
	if publisher == nil {
		publisher = events.Discard
	}

	return &Aggregator{
		store:     store,
		gaps:      gapStats,
		faqs:      faqStats,
		archive:   archive,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With("system", "report-aggregator"),
	}
}

// Snapshot aggregates current state into a new snapshot report.
func (a *Aggregator) Snapshot(ctx context.Context) (*Report, error) {
	return a.record(ctx, KindSnapshot, nil)
}

// Record aggregates current state into a report describing run.
func (a *Aggregator) Record(ctx context.Context, run *Run) (*Report, error) {
	return a.record(ctx, KindAnalysisRun, run)
}

func (a *Aggregator) record(ctx context.Context, kind Kind, run *Run) (*Report, error) {
	r, err := a.aggregate(ctx)
	if err != nil {
		return nil, err
	}
	r.Kind = kind
	r.Run = run

	if a.archive != nil {
		if err := a.upload(ctx, r); err != nil {
			a.logger.WarnContext(ctx, "report archive failed", "id", r.ID, "error", err)
		}
	}

	if err := a.store.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("persist report: %w", err)
	}

	a.publisher.Publish(ctx, events.Event{
		Entity:  events.EntityReport,
		ID:      r.ID.String(),
		Version: 1,
		Action:  events.ActionCreated,
		At:      r.GeneratedAt,
	})

	a.logger.InfoContext(ctx, "report recorded",
		"id", r.ID,
		"kind", r.Kind,
		"gaps", r.GapCount,
		"faqs", r.FAQCount,
		"archived", r.ArchiveKey != "")

	return r, nil
}

func (a *Aggregator) aggregate(ctx context.Context) (*Report, error) {
	var (
		gs *gaps.Stats
		fs *faqs.Stats
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		gs, err = a.gaps.Stats(gctx)
		return err
	})
	eg.Go(func() (err error) {
		fs, err = a.faqs.Stats(gctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	r := &Report{
		ID:                uuid.New(),
		GeneratedAt:       a.clock().UTC(),
		GapCount:          gs.Total,
		FAQCount:          fs.Total,
		GapsByPriority:    gs.ByPriority,
		GapsByStatus:      gs.ByStatus,
		FAQsByStatus:      fs.ByStatus,
		AverageImpact:     gs.AverageImpact,
		AverageConfidence: fs.AverageConfidence,
		HelpfulTotal:      fs.HelpfulTotal,
		NotHelpfulTotal:   fs.NotHelpfulTotal,
		TopGaps:           gs.Top,
	}
	if r.TopGaps == nil {
		r.TopGaps = []gaps.Highlight{}
	}
	if gs.Total > 0 {
		r.Coverage = float64(gs.ByStatus[gaps.StatusResolved]) / float64(gs.Total)
	}
	return r, nil
}

func (a *Aggregator) upload(ctx context.Context, r *Report) error {
	key := archiveKey(r)
	r.ArchiveKey = key

	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		r.ArchiveKey = ""
		return err
	}

	if err := a.archive.Upload(ctx, key, bytes.NewReader(body), "application/json"); err != nil {
		r.ArchiveKey = ""
		return err
	}
	return nil
}
