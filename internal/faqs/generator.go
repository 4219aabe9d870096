package faqs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/lacuna/internal/cluster"
	"github.com/JaimeStill/lacuna/internal/events"
	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/internal/synthesis"
	"github.com/JaimeStill/lacuna/pkg/retry"
)

// GenerateResult reports a generation run.
type GenerateResult struct {
	FAQs            []FAQ             `json:"faqs"`
	Failures        []cluster.Failure `json:"failures"`
	Skipped         []Skipped         `json:"skipped"`
	SignalsAnalyzed int               `json:"signals_analyzed"`
	Clusters        int               `json:"clusters"`
}

// Skipped reports a cluster whose topic already has an unpublished generated FAQ.
type Skipped struct {
	ClusterID string    `json:"cluster_id"`
	Topic     string    `json:"topic"`
	FAQID     uuid.UUID `json:"faq_id"`
}

// GeneratorOptions tunes a Generator.
type GeneratorOptions struct {
	MinConfidence float64
	// StorePolicy bounds each draft write.
	StorePolicy retry.Policy
	Workers     int
	Clock       func() time.Time
}

// Generator drafts one FAQ per support-ticket cluster.
type Generator struct {
	store       Store
	clusterer   cluster.Clusterer
	synthesizer synthesis.Synthesizer
	publisher   events.Publisher
	opts        GeneratorOptions
	logger      *slog.Logger
}

// NewGenerator creates a Generator writing drafts to store.
func NewGenerator(
	store Store,
	clusterer cluster.Clusterer,
	synthesizer synthesis.Synthesizer,
	publisher events.Publisher,
	opts GeneratorOptions,
	logger *slog.Logger,
) *Generator {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = DefaultMinConfidence
	}

	return &Generator{
		store:       store,
		clusterer:   clusterer,
		synthesizer: synthesizer,
		publisher:   publisher,
		opts:        opts,
		logger:      logger.With("system", "faq-generator"),
	}
}

type outcome struct {
	faq     *FAQ
	failure *cluster.Failure
	skipped *Skipped
}

// Generate clusters sigs and drafts an FAQ for every cluster holding support
// tickets. Search queries in the same cluster become related queries and
// synthesis context. Failed clusters are reported and do not stop the run.
// An error is returned only when ctx is done before any work starts.
func (g *Generator) Generate(ctx context.Context, sigs []signals.Signal) (*GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var clusters []cluster.Cluster
	for _, c := range g.clusterer.Cluster(sigs) {
		if c.HasSource(signals.SourceSupportTicket) {
			clusters = append(clusters, c)
		}
	}

	outcomes := make([]outcome, len(clusters))

	var eg errgroup.Group
	eg.SetLimit(g.opts.Workers)

	for i, c := range clusters {
		eg.Go(func() error {
			outcomes[i] = g.draft(ctx, c)
			return nil
		})
	}
	eg.Wait()

	result := &GenerateResult{
		FAQs:            make([]FAQ, 0, len(clusters)),
		Failures:        make([]cluster.Failure, 0),
		Skipped:         make([]Skipped, 0),
		SignalsAnalyzed: len(sigs),
		Clusters:        len(clusters),
	}
	for _, o := range outcomes {
		switch {
		case o.faq != nil:
			result.FAQs = append(result.FAQs, *o.faq)
		case o.failure != nil:
			result.Failures = append(result.Failures, *o.failure)
		case o.skipped != nil:
			result.Skipped = append(result.Skipped, *o.skipped)
		}
	}

	g.logger.InfoContext(ctx, "generation complete",
		"signals", len(sigs),
		"clusters", len(clusters),
		"faqs", len(result.FAQs),
		"skipped", len(result.Skipped),
		"failures", len(result.Failures))

	return result, nil
}

// openDraft returns the topic's unpublished generated FAQ, if any. Curated FAQs
// on the same topic do not block generation.
func (g *Generator) openDraft(ctx context.Context, topic string) (*FAQ, error) {
	open, err := g.store.Unpublished(ctx, topic)
	if err != nil {
		return nil, err
	}
	for i := range open {
		if open[i].Origin == OriginGenerated {
			return &open[i], nil
		}
	}
	return nil, nil
}

func (g *Generator) draft(ctx context.Context, c cluster.Cluster) outcome {
	fail := func(kind cluster.FailureKind, err error) outcome {
		f := cluster.NewFailure(c, kind, err)
		g.logger.WarnContext(ctx, "faq generation failed", "topic", c.Key, "kind", kind, "error", err)
		return outcome{failure: &f}
	}

	if err := ctx.Err(); err != nil {
		return fail(cluster.FailureCanceled, err)
	}

	open, err := g.openDraft(ctx, c.Key)
	if err != nil {
		return fail(classify(ctx, err), err)
	}
	if open != nil {
		return g.skip(c, open.ID)
	}

	tickets := c.BySource(signals.SourceSupportTicket)
	queries := relatedQueries(c)
	rep, _ := cluster.Representative(tickets)

	answer, err := g.synthesizer.Synthesize(ctx, synthesis.Request{
		Question: question(rep),
		Topic:    c.Label,
		Context:  synthesisContext(tickets, queries),
	})
	if err != nil {
		return fail(classify(ctx, err), err)
	}
	if strings.TrimSpace(answer.Text) == "" {
		return fail(cluster.FailureGeneration, fmt.Errorf("%w: empty answer", synthesis.ErrGenerationFailed))
	}

	now := g.opts.Clock().UTC()
	f := &FAQ{
		ID:              uuid.New(),
		Question:        question(rep),
		Answer:          strings.TrimSpace(answer.Text),
		Category:        c.Label,
		Topic:           c.Key,
		Status:          StatusDraft,
		Origin:          OriginGenerated,
		ConfidenceScore: answer.Confidence,
		SourceTickets:   sourceTickets(tickets),
		RelatedQueries:  queries,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	Promote(f, g.opts.MinConfidence, now)

	_, err = retry.Do(ctx, g.opts.StorePolicy, func(actx context.Context) (struct{}, error) {
		return struct{}{}, g.store.Create(actx, f)
	})
	if errors.Is(err, ErrDuplicate) {
		var id uuid.UUID
		if open, _ := g.openDraft(ctx, c.Key); open != nil {
			id = open.ID
		}
		return g.skip(c, id)
	}
	if err != nil {
		return fail(classify(ctx, err), err)
	}

	g.publisher.Publish(ctx, events.Event{
		Entity:  events.EntityFAQ,
		ID:      f.ID.String(),
		Version: f.Version,
		Action:  events.ActionCreated,
		At:      now,
	})

	return outcome{faq: f}
}

func (g *Generator) skip(c cluster.Cluster, id uuid.UUID) outcome {
	g.logger.Debug("faq generation skipped", "topic", c.Key, "faq", id)
	return outcome{skipped: &Skipped{ClusterID: c.ID, Topic: c.Key, FAQID: id}}
}

func classify(ctx context.Context, err error) cluster.FailureKind {
	switch {
	case errors.Is(err, retry.ErrTimeout):
		return cluster.FailureTimeout
	case errors.Is(err, context.Canceled), ctx.Err() != nil:
		return cluster.FailureCanceled
	case errors.Is(err, synthesis.ErrGenerationFailed):
		return cluster.FailureGeneration
	}
	return cluster.FailureStorage
}

// question is the subject line of the representative ticket.
func question(rep signals.Signal) string {
	q, _, _ := strings.Cut(rep.Text, "\n\n")
	return strings.TrimSpace(q)
}

func sourceTickets(tickets []signals.Signal) []string {
	refs := make([]string, 0, len(tickets))
	for _, t := range tickets {
		if t.Ref != "" && !slices.Contains(refs, t.Ref) {
			refs = append(refs, t.Ref)
		}
	}
	return refs
}

func relatedQueries(c cluster.Cluster) []string {
	out := make([]string, 0)
	for _, s := range c.BySource(signals.SourceSearchQuery) {
		if !slices.Contains(out, s.Text) {
			out = append(out, s.Text)
		}
	}
	return out
}

func synthesisContext(tickets []signals.Signal, queries []string) []string {
	var out []string
	for _, t := range tickets {
		if t.Detail == "" {
			continue
		}
		if line := "Resolution: " + t.Detail; !slices.Contains(out, line) {
			out = append(out, line)
		}
	}
	for _, q := range queries {
		out = append(out, "Related search: "+q)
	}
	return out
}
