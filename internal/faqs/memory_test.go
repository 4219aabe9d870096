package faqs_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/faqs"
	"github.com/JaimeStill/lacuna/pkg/pagination"
	"github.com/JaimeStill/lacuna/pkg/query"
)

func TestMemoryCreateGeneratedIsExclusivePerTopic(t *testing.T) {
	store := faqs.NewMemory()

	var (
		wg         sync.WaitGroup
		created    atomic.Int32
		duplicates atomic.Int32
	)
	for range 10 {
		wg.Go(func() {
			f := faqIn(faqs.StatusDraft, 0.5)
			f.Origin = faqs.OriginGenerated
			err := store.Create(context.Background(), f)
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, faqs.ErrDuplicate):
				duplicates.Add(1)
			default:
				t.Error(err)
			}
		})
	}
	wg.Wait()

	if created.Load() != 1 || duplicates.Load() != 9 {
		t.Errorf("created = %d duplicates = %d", created.Load(), duplicates.Load())
	}
}

func TestMemoryCreateAfterPublish(t *testing.T) {
	store := faqs.NewMemory()
	ctx := context.Background()

	first := faqIn(faqs.StatusPendingReview, 0.9)
	first.Origin = faqs.OriginGenerated
	if err := store.Create(ctx, first); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update(ctx, first.ID, func(f *faqs.FAQ) error {
		return faqs.Publish(f, false, faqs.DefaultMinConfidence, now)
	}); err != nil {
		t.Fatal(err)
	}

	second := faqIn(faqs.StatusDraft, 0.5)
	second.Origin = faqs.OriginGenerated
	if err := store.Create(ctx, second); err != nil {
		t.Errorf("topic with only published faqs should accept a new draft: %v", err)
	}

	curated := faqIn(faqs.StatusDraft, 1)
	curated.Origin = faqs.OriginCurated
	if err := store.Create(ctx, curated); err != nil {
		t.Errorf("curated faqs are not exclusive: %v", err)
	}
}

func TestMemoryListSearchAndSort(t *testing.T) {
	store := faqs.NewMemory()
	ctx := context.Background()

	for i, q := range []string{"How do refunds work?", "Where are invoices?", "Can I export data?"} {
		f := faqIn(faqs.StatusDraft, float64(i)/10)
		f.ID = uuid.New()
		f.Question = q
		f.Topic = q
		f.Origin = faqs.OriginCurated
		if err := store.Create(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	search := "INVOICE"
	result, err := store.List(ctx, pagination.PageRequest{Page: 1, PageSize: 10, Search: &search}, faqs.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 1 {
		t.Errorf("search total = %d, want 1", result.Total)
	}

	result, err = store.List(ctx, pagination.PageRequest{
		Page:     1,
		PageSize: 10,
		Sort:     query.ParseSortFields("-confidence_score"),
	}, faqs.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Data[0].Question != "Can I export data?" {
		t.Errorf("first = %q", result.Data[0].Question)
	}
}
