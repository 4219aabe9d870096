package gaps

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/events"
	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/pagination"
)

type service struct {
	store      Store
	detector   *Detector
	publisher  events.Publisher
	cache      *events.Cache[Gap]
	clock      func() time.Time
	logger     *slog.Logger
	pagination pagination.Config
}

// Options wires the dependencies of the gap System.
type Options struct {
	Store      Store
	Detector   *Detector
	Publisher  events.Publisher
	Cache      *events.Cache[Gap]
	Clock      func() time.Time
	Pagination pagination.Config
}

// New creates the gap System.
func New(opts Options, logger *slog.Logger) System {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.Discard
	}

	return &service{
		store:      opts.Store,
		detector:   opts.Detector,
		publisher:  publisher,
		cache:      opts.Cache,
		clock:      clock,
		logger:     logger.With("system", "gaps"),
		pagination: opts.Pagination,
	}
}

func (s *service) Handler(maxBodySize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxBodySize)
}

func (s *service) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Gap], error) {
	page.Normalize(s.pagination)
	return s.store.List(ctx, page, filters)
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*Gap, error) {
	if s.cache == nil {
		return s.store.Find(ctx, id)
	}

	if g, ok := s.cache.Get(id.String()); ok {
		return g.clone(), nil
	}

	gen := s.cache.Generation()
	g, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(id.String(), *g.clone(), gen)
	return g, nil
}

func (s *service) Create(ctx context.Context, cmd CreateCommand) (*Gap, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	topic := signals.NormalizeTopic(cmd.Topic)

	g, _, err := s.store.Upsert(ctx, topic, func(current *Gap) (*Gap, error) {
		if current != nil {
			return nil, fmt.Errorf("%w: %s (%s)", ErrDuplicate, topic, current.ID)
		}
		return &Gap{
			ID:           uuid.New(),
			Title:        strings.TrimSpace(cmd.Title),
			Description:  strings.TrimSpace(cmd.Description),
			Topic:        topic,
			ImpactScore:  cmd.ImpactScore,
			Priority:     PriorityFor(cmd.ImpactScore),
			Status:       StatusOpen,
			LastSignalAt: now,
			Evidence:     []Evidence{},
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, g, events.ActionCreated, now)
	s.logger.InfoContext(ctx, "gap created", "id", g.ID, "topic", g.Topic, "priority", g.Priority)
	return g, nil
}

func (s *service) Analyze(ctx context.Context, batch signals.Batch) (*DetectResult, error) {
	sigs, err := signals.Ingest(batch, s.clock())
	if err != nil {
		return nil, err
	}
	return s.Detect(ctx, sigs)
}

func (s *service) Detect(ctx context.Context, sigs []signals.Signal) (*DetectResult, error) {
	return s.detector.Detect(ctx, sigs)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Gap, error) {
	now := s.clock().UTC()

	g, err := s.store.Update(ctx, id, func(g *Gap) error {
		return Transition(g, status, now)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, g, events.ActionTransitioned, now)
	s.logger.InfoContext(ctx, "gap transitioned", "id", g.ID, "status", g.Status, "version", g.Version)
	return g, nil
}

func (s *service) ResolveTopic(ctx context.Context, topic string) ([]Gap, error) {
	open, err := s.store.Unresolved(ctx, topic)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	resolved := make([]Gap, 0, len(open))

	for _, candidate := range open {
		g, err := s.store.Update(ctx, candidate.ID, func(g *Gap) error {
			return Resolve(g, now)
		})
		if err != nil {
			return resolved, fmt.Errorf("resolve gap %s: %w", candidate.ID, err)
		}

		s.publish(ctx, g, events.ActionTransitioned, now)
		resolved = append(resolved, *g)
	}

	if len(resolved) > 0 {
		s.logger.InfoContext(ctx, "gaps auto-resolved", "topic", topic, "count", len(resolved))
	}
	return resolved, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

func (s *service) publish(ctx context.Context, g *Gap, action events.Action, now time.Time) {
	s.publisher.Publish(ctx, events.Event{
		Entity:  events.EntityGap,
		ID:      g.ID.String(),
		Version: g.Version,
		Action:  action,
		At:      now,
	})
}
