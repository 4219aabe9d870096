package faqs

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/events"
	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/pagination"
)

type service struct {
	store         Store
	generator     *Generator
	resolver      GapResolver
	publisher     events.Publisher
	cache         *events.Cache[FAQ]
	minConfidence float64
	clock         func() time.Time
	logger        *slog.Logger
	pagination    pagination.Config
}

// Options wires the dependencies of the FAQ System.
type Options struct {
	Store         Store
	Generator     *Generator
	Resolver      GapResolver
	Publisher     events.Publisher
	Cache         *events.Cache[FAQ]
	MinConfidence float64
	Clock         func() time.Time
	Pagination    pagination.Config
}

// New creates the FAQ System.
func New(opts Options, logger *slog.Logger) System {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.Discard
	}
	minConfidence := opts.MinConfidence
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}

	return &service{
		store:         opts.Store,
		generator:     opts.Generator,
		resolver:      opts.Resolver,
		publisher:     publisher,
		cache:         opts.Cache,
		minConfidence: minConfidence,
		clock:         clock,
		logger:        logger.With("system", "faqs"),
		pagination:    opts.Pagination,
	}
}

func (s *service) Handler(maxBodySize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxBodySize)
}

func (s *service) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[FAQ], error) {
	page.Normalize(s.pagination)
	return s.store.List(ctx, page, filters)
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*FAQ, error) {
	if s.cache == nil {
		return s.store.Find(ctx, id)
	}

	if f, ok := s.cache.Get(id.String()); ok {
		return f.clone(), nil
	}

	gen := s.cache.Generation()
	f, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(id.String(), *f.clone(), gen)
	return f, nil
}

func (s *service) Create(ctx context.Context, cmd CreateCommand) (*FAQ, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	f := &FAQ{
		ID:              uuid.New(),
		Question:        strings.TrimSpace(cmd.Question),
		Answer:          strings.TrimSpace(cmd.Answer),
		Category:        strings.TrimSpace(cmd.Category),
		Topic:           cmd.topic(),
		Status:          StatusDraft,
		Origin:          OriginCurated,
		ConfidenceScore: 1,
		SourceTickets:   []string{},
		RelatedQueries:  []string{},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Create(ctx, f); err != nil {
		return nil, err
	}

	s.publish(ctx, f, events.ActionCreated, now)
	s.logger.InfoContext(ctx, "faq created", "id", f.ID, "topic", f.Topic)
	return f, nil
}

func (s *service) Edit(ctx context.Context, id uuid.UUID, cmd EditCommand) (*FAQ, error) {
	return s.mutate(ctx, id, events.ActionUpdated, func(f *FAQ, now time.Time) error {
		return Edit(f, cmd, now)
	})
}

func (s *service) Generate(ctx context.Context, batch signals.Batch) (*GenerateResult, error) {
	sigs, err := signals.Ingest(batch, s.clock())
	if err != nil {
		return nil, err
	}
	return s.GenerateFrom(ctx, sigs)
}

func (s *service) GenerateFrom(ctx context.Context, sigs []signals.Signal) (*GenerateResult, error) {
	return s.generator.Generate(ctx, sigs)
}

func (s *service) Submit(ctx context.Context, id uuid.UUID) (*FAQ, error) {
	return s.mutate(ctx, id, events.ActionTransitioned, Submit)
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*FAQ, error) {
	return s.mutate(ctx, id, events.ActionTransitioned, Approve)
}

func (s *service) Publish(ctx context.Context, id uuid.UUID, override bool) (*FAQ, error) {
	f, err := s.mutate(ctx, id, events.ActionTransitioned, func(f *FAQ, now time.Time) error {
		return Publish(f, override, s.minConfidence, now)
	})
	if err != nil {
		return nil, err
	}

	if s.resolver != nil {
		resolved, err := s.resolver.ResolveTopic(ctx, f.Topic)
		if err != nil {
			s.logger.ErrorContext(ctx, "gap auto-resolution failed", "faq", f.ID, "topic", f.Topic, "error", err)
		} else if len(resolved) > 0 {
			s.logger.InfoContext(ctx, "published faq resolved gaps", "faq", f.ID, "topic", f.Topic, "gaps", len(resolved))
		}
	}

	return f, nil
}

func (s *service) Feedback(ctx context.Context, id uuid.UUID, helpful bool) (*FAQ, error) {
	return s.mutate(ctx, id, events.ActionFeedback, func(f *FAQ, _ time.Time) error {
		RecordFeedback(f, helpful)
		return nil
	})
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

func (s *service) mutate(
	ctx context.Context,
	id uuid.UUID,
	action events.Action,
	fn func(f *FAQ, now time.Time) error,
) (*FAQ, error) {
	now := s.clock().UTC()

	f, err := s.store.Update(ctx, id, func(f *FAQ) error {
		return fn(f, now)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, f, action, now)
	s.logger.InfoContext(ctx, "faq "+string(action), "id", f.ID, "status", f.Status, "version", f.Version)
	return f, nil
}

func (s *service) publish(ctx context.Context, f *FAQ, action events.Action, now time.Time) {
	s.publisher.Publish(ctx, events.Event{
		Entity:  events.EntityFAQ,
		ID:      f.ID.String(),
		Version: f.Version,
		Action:  action,
		At:      now,
	})
}
