package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
)

var _ repository.ChannelPlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planColumns = `id, name, description, duration_type, duration_days, price, is_active, sort_order, created_at`

func scanPlan(row pgx.Row) (*model.ChannelPlan, error) {
	p := &model.ChannelPlan{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.DurationType, &p.DurationDays, &p.Price, &p.IsActive, &p.SortOrder, &p.CreatedAt)
	if err != nil {
		return nil, scanErr(err)
	}
	return p, nil
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.ChannelPlan) error {
	const q = `
INSERT INTO channel_plans (` + planColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, duration_type=$4, duration_days=$5, price=$6, is_active=$7, sort_order=$8;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.Description, p.DurationType, p.DurationDays, p.Price, p.IsActive, p.SortOrder, p.CreatedAt)
	if err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ChannelPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM channel_plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.ChannelPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM channel_plans WHERE is_active ORDER BY sort_order ASC, price ASC;`
	return r.list(ctx, tx, q)
}

func (r *planRepo) List(ctx context.Context, tx repository.Tx) ([]*model.ChannelPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM channel_plans ORDER BY sort_order ASC, price ASC;`
	return r.list(ctx, tx, q)
}

func (r *planRepo) list(ctx context.Context, tx repository.Tx, q string) ([]*model.ChannelPlan, error) {
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()

	var out []*model.ChannelPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *planRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	cmd, err := execSQL(ctx, r.pool, tx, `DELETE FROM channel_plans WHERE id=$1;`, id)
	if err != nil {
		return writeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
