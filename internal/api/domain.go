package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/lacuna/internal/cluster"
	"github.com/JaimeStill/lacuna/internal/config"
	"github.com/JaimeStill/lacuna/internal/content"
	"github.com/JaimeStill/lacuna/internal/events"
	"github.com/JaimeStill/lacuna/internal/faqs"
	"github.com/JaimeStill/lacuna/internal/gaps"
	"github.com/JaimeStill/lacuna/internal/reports"
	"github.com/JaimeStill/lacuna/internal/synthesis"
	"github.com/JaimeStill/lacuna/pkg/retry"
)

const cacheCleanupFactor = 2

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Gaps    gaps.System
	FAQs    faqs.System
	Reports reports.System
	Content content.System
}

type stores struct {
	gaps    gaps.Store
	faqs    faqs.Store
	reports reports.Store
}

func newStores(cfg *config.Config, runtime *Runtime) stores {
	if cfg.Store == config.StoreMemory {
		return stores{
			gaps:    gaps.NewMemory(),
			faqs:    faqs.NewMemory(),
			reports: reports.NewMemory(),
		}
	}

	db := runtime.Database.Connection()
	return stores{
		gaps:    gaps.NewRepository(db),
		faqs:    faqs.NewRepository(db),
		reports: reports.NewRepository(db),
	}
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	st := newStores(cfg, runtime)
	bus := runtime.Bus
	clusterer := cluster.NewTopicClusterer(cfg.Analysis.ClusterThreshold)

	ttl := cfg.Analysis.CacheTTLDuration()
	gapCache := events.NewCache[gaps.Gap](events.EntityGap, ttl, ttl*cacheCleanupFactor)
	faqCache := events.NewCache[faqs.FAQ](events.EntityFAQ, ttl, ttl*cacheCleanupFactor)
	bus.Subscribe(gapCache.Invalidate)
	bus.Subscribe(faqCache.Invalidate)

	storePolicy := retry.Policy{
		Timeout:    cfg.Analysis.StoreTimeoutDuration(),
		MaxRetries: cfg.Analysis.StoreRetries,
	}

	detector := gaps.NewDetector(st.gaps, clusterer, bus, gaps.DetectorOptions{
		Score: gaps.ScoreParams{
			VolumeScale: cfg.Analysis.VolumeScale,
			HalfLife:    cfg.Analysis.HalfLifeDuration(),
		},
		Policy:  storePolicy,
		Workers: cfg.Analysis.Workers,
	}, runtime.Logger)

	gapsSystem := gaps.New(gaps.Options{
		Store:      st.gaps,
		Detector:   detector,
		Publisher:  bus,
		Cache:      gapCache,
		Pagination: runtime.Pagination,
	}, runtime.Logger)

	synth, err := newSynthesizer(&cfg.Synthesis, runtime)
	if err != nil {
		return nil, err
	}

	generator := faqs.NewGenerator(st.faqs, clusterer, synth, bus, faqs.GeneratorOptions{
		MinConfidence: cfg.Review.MinConfidence,
		StorePolicy:   storePolicy,
		Workers:       cfg.Analysis.Workers,
	}, runtime.Logger)

	faqsSystem := faqs.New(faqs.Options{
		Store:         st.faqs,
		Generator:     generator,
		Resolver:      gapsSystem,
		Publisher:     bus,
		Cache:         faqCache,
		MinConfidence: cfg.Review.MinConfidence,
		Pagination:    runtime.Pagination,
	}, runtime.Logger)

	var archive reports.Archive
	if runtime.Storage != nil {
		archive = runtime.Storage
	}

	aggregator := reports.NewAggregator(st.reports, gapsSystem, faqsSystem, archive, bus, nil, runtime.Logger)

	reportsSystem := reports.New(reports.Options{
		Store:      st.reports,
		Aggregator: aggregator,
		Archive:    archive,
		Detector:   gapsSystem,
		Generator:  faqsSystem,
		Interval:   cfg.Analysis.ReportIntervalDuration(),
		Pagination: runtime.Pagination,
	}, runtime.Logger)

	analyzer, err := newAnalyzer(&cfg.Content)
	if err != nil {
		return nil, err
	}

	return &Domain{
		Gaps:    gapsSystem,
		FAQs:    faqsSystem,
		Reports: reportsSystem,
		Content: content.New(analyzer, gapsSystem, runtime.Logger),
	}, nil
}

func newSynthesizer(cfg *config.SynthesisConfig, runtime *Runtime) (synthesis.Synthesizer, error) {
	if !cfg.Enabled() {
		runtime.Logger.Warn("synthesis not configured, faq generation will report failures")
		return synthesis.Disabled{}, nil
	}

	client, err := synthesis.NewOpenAI(synthesis.OpenAIOptions{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("synthesis init failed: %w", err)
	}

	return synthesis.NewBounded(client, synthesis.Limits{
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		Policy: retry.Policy{
			Timeout:    cfg.TimeoutDuration(),
			MaxRetries: cfg.MaxRetries,
		},
	}), nil
}

func newAnalyzer(cfg *config.ContentConfig) (content.Analyzer, error) {
	if !cfg.Enabled() {
		return content.Disabled, nil
	}

	client, err := content.NewClient(cfg.BaseURL, &http.Client{}, retry.Policy{
		Timeout:    cfg.TimeoutDuration(),
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("content init failed: %w", err)
	}
	return client, nil
}
