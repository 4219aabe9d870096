package gaps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/lacuna/internal/cluster"
	"github.com/JaimeStill/lacuna/internal/events"
	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/keylock"
	"github.com/JaimeStill/lacuna/pkg/retry"
)

const excerptLength = 200

// DetectResult reports a detection run. Gaps holds every gap touched by the run,
// including those left unchanged. Failures lists clusters that produced no gap.
type DetectResult struct {
	Gaps            []Gap             `json:"gaps"`
	Failures        []cluster.Failure `json:"failures"`
	SignalsAnalyzed int               `json:"signals_analyzed"`
	Clusters        int               `json:"clusters"`
}

// DetectorOptions tunes a Detector.
type DetectorOptions struct {
	Score   ScoreParams
	Policy  retry.Policy
	Workers int
	Clock   func() time.Time
}

// Detector clusters signals and upserts one gap per cluster topic.
type Detector struct {
	store     Store
	clusterer cluster.Clusterer
	publisher events.Publisher
	locks     keylock.Map
	opts      DetectorOptions
	logger    *slog.Logger
}

// NewDetector creates a Detector writing to store.
func NewDetector(
	store Store,
	clusterer cluster.Clusterer,
	publisher events.Publisher,
	opts DetectorOptions,
	logger *slog.Logger,
) *Detector {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Score.VolumeScale <= 0 || opts.Score.HalfLife <= 0 {
		opts.Score = DefaultScoreParams()
	}

	return &Detector{
		store:     store,
		clusterer: clusterer,
		publisher: publisher,
		opts:      opts,
		logger:    logger.With("system", "gap-detector"),
	}
}

// Detect groups sigs into clusters and upserts a gap per cluster. Each cluster is
// its own atomic unit: a failed or canceled cluster is reported in Failures and
// never rolls back gaps already written. An error is returned only when ctx is
// done before any work starts.
func (d *Detector) Detect(ctx context.Context, sigs []signals.Signal) (*DetectResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clusters := d.clusterer.Cluster(sigs)

	var (
		gaps     = make([]*Gap, len(clusters))
		failures = make([]*cluster.Failure, len(clusters))
		eg       errgroup.Group
	)
	eg.SetLimit(d.opts.Workers)

	for i, c := range clusters {
		eg.Go(func() error {
			g, err := d.upsert(ctx, c)
			if err != nil {
				f := classify(ctx, c, err)
				failures[i] = &f
				d.logger.WarnContext(ctx, "gap upsert failed", "topic", c.Key, "kind", f.Kind, "error", err)
				return nil
			}
			gaps[i] = g
			return nil
		})
	}
	eg.Wait()

	result := &DetectResult{
		Gaps:            make([]Gap, 0, len(clusters)),
		Failures:        make([]cluster.Failure, 0),
		SignalsAnalyzed: len(sigs),
		Clusters:        len(clusters),
	}
	for i := range clusters {
		if gaps[i] != nil {
			result.Gaps = append(result.Gaps, *gaps[i])
		}
		if failures[i] != nil {
			result.Failures = append(result.Failures, *failures[i])
		}
	}

	d.logger.InfoContext(ctx, "detection complete",
		"signals", len(sigs),
		"clusters", len(clusters),
		"gaps", len(result.Gaps),
		"failures", len(result.Failures))

	return result, nil
}

func (d *Detector) upsert(ctx context.Context, c cluster.Cluster) (*Gap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := d.locks.Lock(c.Key)
	defer unlock()

	now := d.opts.Clock().UTC()

	type outcome struct {
		gap     *Gap
		changed bool
	}

	out, err := retry.Do(ctx, d.opts.Policy, func(actx context.Context) (outcome, error) {
		g, changed, err := d.store.Upsert(actx, c.Key, func(current *Gap) (*Gap, error) {
			return Merge(current, c, now, d.opts.Score), nil
		})
		return outcome{gap: g, changed: changed}, err
	})
	if err != nil {
		return nil, err
	}
	if out.gap == nil {
		return nil, fmt.Errorf("cluster %s produced no evidence", c.ID)
	}

	if out.changed {
		action := events.ActionUpdated
		if out.gap.Version == 1 {
			action = events.ActionCreated
		}
		d.publisher.Publish(ctx, events.Event{
			Entity:  events.EntityGap,
			ID:      out.gap.ID.String(),
			Version: out.gap.Version,
			Action:  action,
			At:      now,
		})
	}

	return out.gap, nil
}

// Merge folds the cluster's signals into current, or starts a new open gap when
// current is nil. Evidence already recorded under the same fingerprint is skipped.
// The stored impact score never decreases. Returns nil when the cluster adds no
// new evidence, signalling that nothing needs to be written.
func Merge(current *Gap, c cluster.Cluster, now time.Time, p ScoreParams) *Gap {
	next := current
	if next == nil {
		next = &Gap{
			ID:        uuid.New(),
			Topic:     c.Key,
			Title:     "Documentation gap: " + c.Label,
			Status:    StatusOpen,
			CreatedAt: now,
			Evidence:  []Evidence{},
		}
	}

	known := make(map[string]struct{}, len(next.Evidence))
	for _, e := range next.Evidence {
		known[e.Fingerprint] = struct{}{}
	}

	var added int
	for _, s := range c.Signals {
		if _, ok := known[s.Fingerprint]; ok {
			continue
		}
		known[s.Fingerprint] = struct{}{}
		next.Evidence = append(next.Evidence, Evidence{
			Fingerprint: s.Fingerprint,
			Source:      s.Source,
			Weight:      s.Weight,
			Excerpt:     excerpt(s.Text),
			ObservedAt:  s.Timestamp,
		})
		added++
	}

	if added == 0 {
		return nil
	}

	tally(next)
	next.ImpactScore = max(next.ImpactScore, Score(next.Evidence, now, p))
	next.Priority = PriorityFor(next.ImpactScore)
	next.Description = fmt.Sprintf(
		"%d signals (%d from search, %d support tickets) point to missing documentation on %q. Most recent signal %s.",
		next.SignalCount, next.SearchCount, next.TicketCount, c.Label,
		next.LastSignalAt.Format(time.RFC3339),
	)
	next.Version++
	next.UpdatedAt = now

	return next
}

func tally(g *Gap) {
	g.SignalCount, g.SearchCount, g.TicketCount = 0, 0, 0
	for _, e := range g.Evidence {
		g.SignalCount += e.Weight
		switch e.Source {
		case signals.SourceSearchQuery:
			g.SearchCount += e.Weight
		case signals.SourceSupportTicket:
			g.TicketCount += e.Weight
		}
		if e.ObservedAt.After(g.LastSignalAt) {
			g.LastSignalAt = e.ObservedAt
		}
	}
}

func classify(ctx context.Context, c cluster.Cluster, err error) cluster.Failure {
	switch {
	case errors.Is(err, retry.ErrTimeout):
		return cluster.NewFailure(c, cluster.FailureTimeout, err)
	case errors.Is(err, context.Canceled), ctx.Err() != nil:
		return cluster.NewFailure(c, cluster.FailureCanceled, err)
	}
	return cluster.NewFailure(c, cluster.FailureStorage, err)
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptLength {
		return s
	}
	return string(r[:excerptLength]) + "…"
}
