package gaps

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/pkg/pagination"
	"github.com/JaimeStill/lacuna/pkg/query"
	"github.com/JaimeStill/lacuna/pkg/repository"
)

const columns = `id, title, description, topic, priority, impact_score, status,
	signal_count, search_count, ticket_count, last_signal_at, evidence,
	version, created_at, updated_at, resolved_at`

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
) (*pagination.PageResult[Gap], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "title", "description", "topic")

	filters.Apply(qb)

	if sort := sortFields(page.Sort); len(sort) > 0 {
		qb.OrderByFields(sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count gaps: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	gaps, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanGap)
	if err != nil {
		return nil, fmt.Errorf("query gaps: %w", err)
	}

	result := pagination.NewPageResult(gaps, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Gap, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	g, err := repository.QueryOne(ctx, r.db, q, args, scanGap)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &g, nil
}

func (r *repo) Upsert(ctx context.Context, topic string, fn UpsertFunc) (*Gap, bool, error) {
	type outcome struct {
		gap     *Gap
		changed bool
	}

	out, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (outcome, error) {
		if err := repository.LockKey(ctx, tx, "gaps:"+topic); err != nil {
			return outcome{}, fmt.Errorf("lock topic: %w", err)
		}

		q := `SELECT ` + columns + ` FROM gaps
			WHERE topic = $1 AND status <> 'resolved'
			FOR UPDATE`

		var current *Gap
		g, err := repository.QueryOne(ctx, tx, q, []any{topic}, scanGap)
		switch {
		case err == nil:
			current = &g
		case !errors.Is(err, sql.ErrNoRows):
			return outcome{}, err
		}

		var arg *Gap
		if current != nil {
			arg = current.clone()
		}

		next, err := fn(arg)
		if err != nil {
			return outcome{}, err
		}
		if next == nil {
			return outcome{gap: current}, nil
		}

		if current == nil {
			err = r.insert(ctx, tx, next)
		} else {
			err = r.update(ctx, tx, next)
		}
		if err != nil {
			return outcome{}, err
		}

		return outcome{gap: next, changed: true}, nil
	})

	if err != nil {
		return nil, false, mapWriteError(err)
	}
	return out.gap, out.changed, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*Gap, error) {
	g, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Gap, error) {
		q := `SELECT ` + columns + ` FROM gaps WHERE id = $1 FOR UPDATE`

		g, err := repository.QueryOne(ctx, tx, q, []any{id}, scanGap)
		if err != nil {
			return Gap{}, err
		}

		if err := fn(&g); err != nil {
			return Gap{}, err
		}

		if err := r.update(ctx, tx, &g); err != nil {
			return Gap{}, err
		}
		return g, nil
	})

	if err != nil {
		return nil, mapWriteError(err)
	}
	return &g, nil
}

func (r *repo) Unresolved(ctx context.Context, topic string) ([]Gap, error) {
	status := StatusResolved
	q := `SELECT ` + columns + ` FROM gaps WHERE topic = $1 AND status <> $2 ORDER BY created_at`

	gaps, err := repository.QueryMany(ctx, r.db, q, []any{topic, status}, scanGap)
	if err != nil {
		return nil, fmt.Errorf("query unresolved gaps: %w", err)
	}
	return gaps, nil
}

func (r *repo) Stats(ctx context.Context) (*Stats, error) {
	stats := NewStats()

	q := `SELECT priority, status, COUNT(*), COALESCE(SUM(impact_score), 0)
		FROM gaps GROUP BY priority, status`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query gap stats: %w", err)
	}
	defer rows.Close()

	var impact float64
	for rows.Next() {
		var (
			priority Priority
			status   Status
			count    int
			sum      float64
		)
		if err := rows.Scan(&priority, &status, &count, &sum); err != nil {
			return nil, fmt.Errorf("scan gap stats: %w", err)
		}
		stats.ByPriority[priority] += count
		stats.ByStatus[status] += count
		stats.Total += count
		impact += sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gap stats: %w", err)
	}

	if stats.Total > 0 {
		stats.AverageImpact = impact / float64(stats.Total)
	}

	top := `SELECT ` + columns + ` FROM gaps
		WHERE status <> 'resolved'
		ORDER BY impact_score DESC, topic
		LIMIT $1`

	ranked, err := repository.QueryMany(ctx, r.db, top, []any{TopLimit}, scanGap)
	if err != nil {
		return nil, fmt.Errorf("query top gaps: %w", err)
	}
	for i := range ranked {
		stats.Top = append(stats.Top, ranked[i].highlight())
	}
	return &stats, nil
}

func (r *repo) insert(ctx context.Context, tx *sql.Tx, g *Gap) error {
	evidence, err := json.Marshal(g.Evidence)
	if err != nil {
		return fmt.Errorf("encode evidence: %w", err)
	}

	q := `INSERT INTO gaps (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = tx.ExecContext(ctx, q,
		g.ID, g.Title, g.Description, g.Topic, g.Priority, g.ImpactScore, g.Status,
		g.SignalCount, g.SearchCount, g.TicketCount, g.LastSignalAt, evidence,
		g.Version, g.CreatedAt, g.UpdatedAt, g.ResolvedAt,
	)
	return err
}

func (r *repo) update(ctx context.Context, tx *sql.Tx, g *Gap) error {
	evidence, err := json.Marshal(g.Evidence)
	if err != nil {
		return fmt.Errorf("encode evidence: %w", err)
	}

	q := `UPDATE gaps SET
			title = $2, description = $3, priority = $4, impact_score = $5, status = $6,
			signal_count = $7, search_count = $8, ticket_count = $9, last_signal_at = $10,
			evidence = $11, version = $12, updated_at = $13, resolved_at = $14
		WHERE id = $1`

	return repository.ExecExpectOne(ctx, tx, q,
		g.ID, g.Title, g.Description, g.Priority, g.ImpactScore, g.Status,
		g.SignalCount, g.SearchCount, g.TicketCount, g.LastSignalAt,
		evidence, g.Version, g.UpdatedAt, g.ResolvedAt,
	)
}

func mapWriteError(err error) error {
	if repository.IsCheckViolation(err) {
		return fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}
