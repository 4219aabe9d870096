package reports

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
) (*pagination.PageResult[Report], error) {
	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if sort := sortFields(page.Sort); len(sort) > 0 {
		qb.OrderByFields(sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	reports, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanReport)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	result := pagination.NewPageResult(reports, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Report, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	rep, err := repository.QueryOne(ctx, r.db, q, args, scanReport)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rep, nil
}

func (r *repo) Create(ctx context.Context, rep *Report) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	q := `INSERT INTO reports (id, kind, generated_at, gap_count, faq_count, body)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, q, rep.ID, rep.Kind, rep.GeneratedAt, rep.GapCount, rep.FAQCount, body)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}
