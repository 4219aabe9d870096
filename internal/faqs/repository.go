package faqs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/pkg/pagination"
	"github.com/JaimeStill/lacuna/pkg/query"
	"github.com/JaimeStill/lacuna/pkg/repository"
)

const columns = `id, question, answer, category, topic, status, origin,
	confidence_score, helpful_count, not_helpful_count, source_tickets, related_queries,
	version, created_at, updated_at, published_at`

type repo struct {
	db *sql.DB
}

// NewRepository creates a PostgreSQL-backed Store.
func NewRepository(db *sql.DB) Store {
	return &repo{db: db}
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[FAQ], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "question", "answer", "category")

	filters.Apply(qb)

	if sort := sortFields(page.Sort); len(sort) > 0 {
		qb.OrderByFields(sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count faqs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	faqs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanFAQ)
	if err != nil {
		return nil, fmt.Errorf("query faqs: %w", err)
	}

	result := pagination.NewPageResult(faqs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*FAQ, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFAQ)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) Create(ctx context.Context, f *FAQ) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.LockKey(ctx, tx, "faqs:"+f.Topic); err != nil {
			return struct{}{}, fmt.Errorf("lock topic: %w", err)
		}

		if f.Origin == OriginGenerated {
			var exists bool
			q := `SELECT EXISTS (SELECT 1 FROM faqs WHERE topic = $1 AND status <> 'published')`
			if err := tx.QueryRowContext(ctx, q, f.Topic).Scan(&exists); err != nil {
				return struct{}{}, err
			}
			if exists {
				return struct{}{}, ErrDuplicate
			}
		}

		tickets, queries, err := encodeLists(f)
		if err != nil {
			return struct{}{}, err
		}

		q := `INSERT INTO faqs (` + columns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

		_, err = tx.ExecContext(ctx, q,
			f.ID, f.Question, f.Answer, f.Category, f.Topic, f.Status, f.Origin,
			f.ConfidenceScore, f.HelpfulCount, f.NotHelpfulCount, tickets, queries,
			f.Version, f.CreatedAt, f.UpdatedAt, f.PublishedAt,
		)
		return struct{}{}, err
	})

	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*FAQ, error) {
	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (FAQ, error) {
		q := `SELECT ` + columns + ` FROM faqs WHERE id = $1 FOR UPDATE`

		f, err := repository.QueryOne(ctx, tx, q, []any{id}, scanFAQ)
		if err != nil {
			return FAQ{}, err
		}

		if err := fn(&f); err != nil {
			return FAQ{}, err
		}

		tickets, queries, err := encodeLists(&f)
		if err != nil {
			return FAQ{}, err
		}

		q = `UPDATE faqs SET
				question = $2, answer = $3, category = $4, status = $5, confidence_score = $6,
				helpful_count = $7, not_helpful_count = $8, source_tickets = $9,
				related_queries = $10, version = $11, updated_at = $12, published_at = $13
			WHERE id = $1`

		err = repository.ExecExpectOne(ctx, tx, q,
			f.ID, f.Question, f.Answer, f.Category, f.Status, f.ConfidenceScore,
			f.HelpfulCount, f.NotHelpfulCount, tickets, queries,
			f.Version, f.UpdatedAt, f.PublishedAt,
		)
		return f, err
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) Unpublished(ctx context.Context, topic string) ([]FAQ, error) {
	q := `SELECT ` + columns + ` FROM faqs
		WHERE topic = $1 AND status <> $2 ORDER BY created_at`

	faqs, err := repository.QueryMany(ctx, r.db, q, []any{topic, StatusPublished}, scanFAQ)
	if err != nil {
		return nil, fmt.Errorf("query unpublished faqs: %w", err)
	}
	return faqs, nil
}

func (r *repo) Stats(ctx context.Context) (*Stats, error) {
	stats := NewStats()

	q := `SELECT status, COUNT(*),
			COUNT(*) FILTER (WHERE origin = 'generated'),
			COALESCE(SUM(confidence_score) FILTER (WHERE origin = 'generated'), 0),
			COALESCE(SUM(helpful_count), 0), COALESCE(SUM(not_helpful_count), 0)
		FROM faqs GROUP BY status`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query faq stats: %w", err)
	}
	defer rows.Close()

	var (
		confidence float64
		generated  int
	)
	for rows.Next() {
		var (
			status              Status
			count, gen          int
			sum                 float64
			helpful, notHelpful int64
		)
		if err := rows.Scan(&status, &count, &gen, &sum, &helpful, &notHelpful); err != nil {
			return nil, fmt.Errorf("scan faq stats: %w", err)
		}
		stats.ByStatus[status] += count
		stats.Total += count
		stats.HelpfulTotal += helpful
		stats.NotHelpfulTotal += notHelpful
		confidence += sum
		generated += gen
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faq stats: %w", err)
	}

	if generated > 0 {
		stats.AverageConfidence = confidence / float64(generated)
	}
	return &stats, nil
}

func encodeLists(f *FAQ) (tickets, queries []byte, err error) {
	if tickets, err = json.Marshal(nonNil(f.SourceTickets)); err != nil {
		return nil, nil, fmt.Errorf("encode source_tickets: %w", err)
	}
	if queries, err = json.Marshal(nonNil(f.RelatedQueries)); err != nil {
		return nil, nil, fmt.Errorf("encode related_queries: %w", err)
	}
	return tickets, queries, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
