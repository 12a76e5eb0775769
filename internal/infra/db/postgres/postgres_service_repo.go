package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
)

var _ repository.ServiceRepository = (*serviceRepo)(nil)

type serviceRepo struct{ pool *pgxpool.Pool }

func NewServiceRepo(pool *pgxpool.Pool) *serviceRepo {
	return &serviceRepo{pool: pool}
}

const serviceColumns = `id, name, category, price, currency, duration, icon_type, icon_image, color, is_active, created_at`

func scanService(row pgx.Row) (*model.Service, error) {
	s := &model.Service{}
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Currency, &s.Duration, &s.IconType, &s.IconImage, &s.Color, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, scanErr(err)
	}
	return s, nil
}

func (r *serviceRepo) Save(ctx context.Context, tx repository.Tx, s *model.Service) error {
	const q = `
INSERT INTO services (` + serviceColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  name=$2, category=$3, price=$4, currency=$5, duration=$6, icon_type=$7, icon_image=$8, color=$9, is_active=$10;`

	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.Name, s.Category, s.Price, s.Currency, s.Duration, s.IconType, s.IconImage, s.Color, s.IsActive, s.CreatedAt)
	if err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *serviceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanService(row)
}

func (r *serviceRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE is_active ORDER BY category ASC, name ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()

	var out []*model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
